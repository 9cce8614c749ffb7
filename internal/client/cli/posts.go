package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/pager"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

func (a *App) fetchTimeline(ctx context.Context, pos pager.Position, pageSize int) (int, pager.Position, error) {
	page, err := a.postService.Timeline(ctx, pos, pageSize, models.TimelineFilter{})
	if err != nil {
		return 0, pos, err
	}
	printPosts(page.Posts)
	return len(page.Posts), pager.Position{LastCreatedAt: page.NextCreatedAt, LastPostID: page.NextPostID}, nil
}

func (a *App) fetchMine(ctx context.Context, page, pageSize int) (int, int64, error) {
	list, err := a.postService.Mine(ctx, page, pageSize, "", nil)
	if err != nil {
		return 0, 0, err
	}
	printPosts(list.Posts)
	printlnFn(fmt.Sprintf("Page %d of %d", page, pager.TotalPages(list.Total, pageSize)))
	return len(list.Posts), list.Total, nil
}

// Latest shows the newest page of the timeline.
func (a *App) Latest(ctx context.Context) error {
	a.timeline.Reset()
	return a.More(ctx)
}

// More shows the next page of the timeline.
func (a *App) More(ctx context.Context) error {
	if err := a.timeline.Next(ctx); err != nil {
		return err
	}
	if !a.timeline.HasMore() {
		printlnFn("(end of timeline)")
	}
	return nil
}

func (a *App) Mine(ctx context.Context, more bool) error {
	if err := a.guard(routeCreatePost); err != nil {
		return err
	}
	if !more {
		a.mine.Reset()
	}
	return a.mine.Next(ctx)
}

func (a *App) Hot(ctx context.Context, more bool) error {
	var last int64
	if more {
		if a.hotNext == nil {
			return pager.ErrExhausted
		}
		last = *a.hotNext
	}

	page, err := a.postService.Hot(ctx, last, a.config.PageSize)
	if err != nil {
		return err
	}
	a.hotNext = page.NextCursor
	printPosts(page.Posts)
	return nil
}

func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	d, err := a.postService.Get(ctx, id)
	if err != nil {
		return err
	}
	printPostDetail(d)
	return nil
}

// Publish prompts for a new post and submits it for moderation.
func (a *App) Publish(ctx context.Context) error {
	if err := a.guard(routeCreatePost); err != nil {
		return err
	}

	var (
		p   models.NewPost
		err error
	)
	if p.Title, err = GetSimpleText(a.reader, "Title", os.Stdout); err != nil {
		return err
	}
	if p.Content, err = GetMultiline(a.reader, "Description", os.Stdout); err != nil {
		return err
	}
	if p.PricePerUnit, err = GetFloat(a.reader, "Price per unit (empty for 0)", 0, os.Stdout); err != nil {
		return err
	}
	if p.ContactInfo, err = GetSimpleText(a.reader, "Contact info", os.Stdout); err != nil {
		return err
	}
	paths, err := GetList(a.reader, "Image files, comma separated (empty for none)", os.Stdout)
	if err != nil {
		return err
	}

	images := make([]*filex.Upload, 0, len(paths))
	for _, path := range paths {
		img, err := filex.ReadUpload(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	if u := a.session.User(); u != nil {
		p.AuthorID, p.AuthorUsername, p.AuthorAvatar = u.UserID, u.Nickname, u.AvatarURL
	}

	created, err := a.postService.Create(ctx, p, images)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Post #%d submitted for review.", created.ID))
	return nil
}

func (a *App) Delete(ctx context.Context, arg string) error {
	if err := a.guard(routeCreatePost); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if err := a.postService.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Post #%d deleted.", id))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a post id", s)
	}
	return id, nil
}
