package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/pager"
)

const snippetLength = 80

// report prints a command failure in user terms.
func report(err error) {
	if err == nil {
		return
	}
	printlnFn("Error:", describe(err))
}

func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, pager.ErrExhausted):
		return "no more results"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, please try again later"
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	default:
		return err.Error()
	}
}

func displayName(u *models.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.UserID
}

func printPosts(posts []models.Post) {
	if len(posts) == 0 {
		printlnFn("No posts.")
		return
	}
	for _, p := range posts {
		printlnFn(formatPost(p))
	}
}

func formatPost(p models.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", p.ID, p.Title)
	if p.AuthorUsername != "" {
		fmt.Fprintf(&b, " by %s", p.AuthorUsername)
	}
	switch p.OfficialTag {
	case models.TagOfficial:
		b.WriteString(" [official]")
	case models.TagPinned:
		b.WriteString(" [pinned]")
	}
	if p.Status != models.PostApproved {
		fmt.Fprintf(&b, " (%s", p.Status)
		if p.AuditReason != "" {
			fmt.Fprintf(&b, ": %s", p.AuditReason)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, ", %d views", p.ViewCount)
	return b.String()
}

func printPostDetail(d *models.PostDetail) {
	printlnFn(fmt.Sprintf("#%d %s", d.ID, d.Title))
	if d.AuthorUsername != "" {
		printlnFn("Author:", d.AuthorUsername)
	}
	printlnFn(fmt.Sprintf("Price per unit: %.2f", d.PricePerUnit))
	if d.ContactInfo != "" {
		printlnFn("Contact:", d.ContactInfo)
	}
	if d.Content != "" {
		printlnFn(d.Content)
	}
	for _, img := range d.Images {
		printlnFn("Image:", img.ImageURL)
	}
	printlnFn(fmt.Sprintf("%d views, posted %s", d.ViewCount, d.CreatedAt))
}

func printHit(h *models.SearchHit) {
	printlnFn(fmt.Sprintf("#%d %s", h.ID, h.DisplayTitle()))
	if s := h.Snippet(snippetLength); s != "" {
		printlnFn("   " + s)
	}
}
