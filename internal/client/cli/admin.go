package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

var errAdminUsage = errors.New("usage: admin list [pending|approved|rejected] | admin audit <id> approve|reject [reason] | admin tag <id> none|official|pinned | admin delete <id>")

var statusNames = map[string]models.PostStatus{
	"pending":  models.PostPending,
	"approved": models.PostApproved,
	"rejected": models.PostRejected,
}

var tagNames = map[string]models.OfficialTag{
	"none":     models.TagNone,
	"official": models.TagOfficial,
	"pinned":   models.TagPinned,
}

// Admin runs the moderation subcommands. Every subcommand requires the admin
// role.
func (a *App) Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errAdminUsage
	}
	if err := a.guard(routeAdmin); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return a.adminList(ctx, args[1:])
	case "audit":
		return a.adminAudit(ctx, args[1:])
	case "tag":
		return a.adminTag(ctx, args[1:])
	case "delete":
		if len(args) != 2 {
			return errAdminUsage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.adminService.Delete(ctx, id); err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Post #%d removed.", id))
		return nil
	default:
		return errAdminUsage
	}
}

func (a *App) adminList(ctx context.Context, args []string) error {
	filter := models.AdminFilter{OrderBy: "created_at", OrderDesc: true}
	if len(args) > 0 {
		st, found := statusNames[args[0]]
		if !found {
			return errAdminUsage
		}
		filter.Status = &st
	}

	list, err := a.adminService.List(ctx, filter, 1, a.config.PageSize)
	if err != nil {
		return err
	}
	printPosts(list.Posts)
	printlnFn(fmt.Sprintf("%d posts in total", list.Total))
	return nil
}

func (a *App) adminAudit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errAdminUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var status models.PostStatus
	switch args[1] {
	case "approve":
		status = models.PostApproved
	case "reject":
		status = models.PostRejected
	default:
		return errAdminUsage
	}
	reason := strings.Join(args[2:], " ")

	if err := a.adminService.Audit(ctx, id, status, reason); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Post #%d %s.", id, status))
	return nil
}

func (a *App) adminTag(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errAdminUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	tag, found := tagNames[args[1]]
	if !found {
		return errAdminUsage
	}
	if err := a.adminService.SetOfficialTag(ctx, id, tag); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Post #%d tagged %s.", id, args[1]))
	return nil
}
