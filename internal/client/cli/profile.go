package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

func (a *App) Profile(ctx context.Context) error {
	if err := a.guard(routeProfile); err != nil {
		return err
	}
	p, err := a.profileService.Get(ctx)
	if err != nil {
		return err
	}

	printlnFn("Nickname:", p.Nickname)
	printlnFn("User id:", p.UserID)
	if p.UserRole != nil {
		printlnFn("Role:", p.UserRole.String())
	}
	if p.City != "" || p.Province != "" {
		printlnFn(fmt.Sprintf("Location: %s %s", p.Province, p.City))
	}
	if p.AvatarURL != "" {
		printlnFn("Avatar:", p.AvatarURL)
	}
	return nil
}

// EditProfile asks for each editable field; empty answers keep the current
// value.
func (a *App) EditProfile(ctx context.Context) error {
	if err := a.guard(routeProfile); err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	var err error
	if req.Nickname, err = GetSimpleText(a.reader, "Nickname (empty to keep)", os.Stdout); err != nil {
		return err
	}
	if req.Province, err = GetSimpleText(a.reader, "Province (empty to keep)", os.Stdout); err != nil {
		return err
	}
	if req.City, err = GetSimpleText(a.reader, "City (empty to keep)", os.Stdout); err != nil {
		return err
	}

	p, err := a.profileService.Update(ctx, req)
	if err != nil {
		return err
	}
	printlnFn("Profile updated:", p.Nickname)
	return nil
}

func (a *App) Avatar(ctx context.Context, path string) error {
	if err := a.guard(routeProfile); err != nil {
		return err
	}
	upload, err := filex.ReadUpload(path)
	if err != nil {
		return err
	}
	url, err := a.profileService.UploadAvatar(ctx, upload)
	if err != nil {
		return err
	}
	printlnFn("Avatar updated:", url)
	return nil
}
