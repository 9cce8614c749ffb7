package testgateway

import (
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

// AvatarBaseURL prefixes the URLs of uploaded avatars.
const AvatarBaseURL = "https://cdn.quzhan.test/avatars/"

func (g *Gateway) accountLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AccountLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	g.mu.Lock()
	var a *account
	if id, found := g.accounts[req.Account]; found {
		a = g.users[id]
	}
	g.mu.Unlock()

	if a == nil || a.passwordHash == nil || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)) != nil {
		writeEnvelope(w, http.StatusOK, CodeBadLogin, "invalid account or password", nil)
		return
	}
	g.loginResponse(w, a.id)
}

func (g *Gateway) phoneLogin(w http.ResponseWriter, r *http.Request) {
	var req models.PhoneLoginRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
		badRequest(w, "invalid body")
		return
	}

	g.mu.Lock()
	expected, sent := g.captchas[req.Phone]
	if !sent || expected != req.Code {
		g.mu.Unlock()
		writeEnvelope(w, http.StatusOK, CodeBadLogin, "invalid verification code", nil)
		return
	}
	delete(g.captchas, req.Phone)

	id, found := g.accounts[req.Phone]
	if !found {
		id = g.addUserLocked("", req.Phone, nil, models.RoleUser)
	}
	g.mu.Unlock()

	g.loginResponse(w, id)
}

func (g *Gateway) sendCaptcha(w http.ResponseWriter, r *http.Request) {
	var req models.CaptchaRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Phone) == "" {
		badRequest(w, "phone is required")
		return
	}

	code, err := common.MakeRandHexString(3)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}

	g.mu.Lock()
	g.captchas[req.Phone] = code
	g.mu.Unlock()

	writeOK(w, nil)
}

func (g *Gateway) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if req.Account == "" || req.Password == "" {
		badRequest(w, "account and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		badRequest(w, "passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), g.bcryptCost)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}

	g.mu.Lock()
	if _, taken := g.accounts[req.Account]; taken {
		g.mu.Unlock()
		writeEnvelope(w, http.StatusOK, CodeConflict, "account already exists", nil)
		return
	}
	id := g.addUserLocked(req.Account, "", hash, models.RoleUser)
	g.mu.Unlock()

	g.loginResponse(w, id)
}

func (g *Gateway) loginResponse(w http.ResponseWriter, userID string) {
	access, err := g.IssueAccessToken(userID, g.accessTTL)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}
	refresh, err := g.IssueRefreshToken(userID)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshCookieName,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
	})

	var data models.LoginData
	data.Token.AccessToken = access
	data.UserManage.UserID = userID
	writeOK(w, data)
}

func (g *Gateway) refreshToken(w http.ResponseWriter, r *http.Request) {
	g.refreshCalls.Add(1)

	if d := time.Duration(g.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	if f := g.refreshFault.Load(); f != nil {
		writeEnvelope(w, f.status, f.code, "refresh rejected", nil)
		return
	}

	c, err := r.Cookie(common.RefreshCookieName)
	if err != nil {
		writeEnvelope(w, http.StatusUnauthorized, common.CodeRefreshTokenExpired, "refresh token missing", nil)
		return
	}

	g.mu.Lock()
	userID, valid := g.refreshes[c.Value]
	g.mu.Unlock()
	if !valid {
		writeEnvelope(w, http.StatusUnauthorized, common.CodeRefreshTokenExpired, "refresh token expired", nil)
		return
	}

	access, err := g.IssueAccessToken(userID, g.accessTTL)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}
	writeOK(w, models.TokenPair{AccessToken: access})
}

func (g *Gateway) logout(w http.ResponseWriter, _ *http.Request, a *account) {
	g.mu.Lock()
	for tok, id := range g.refreshes {
		if id == a.id {
			delete(g.refreshes, tok)
		}
	}
	g.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: common.RefreshCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeOK(w, nil)
}

func (g *Gateway) getProfile(w http.ResponseWriter, _ *http.Request, a *account) {
	g.mu.Lock()
	p := a.profile
	g.mu.Unlock()
	writeOK(w, p)
}

func (g *Gateway) updateProfile(w http.ResponseWriter, r *http.Request, a *account) {
	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	g.mu.Lock()
	if req.Nickname != "" {
		a.profile.Nickname = req.Nickname
	}
	if req.Gender != nil {
		gender := *req.Gender
		a.profile.Gender = &gender
	}
	if req.City != "" {
		a.profile.City = req.City
	}
	if req.Province != "" {
		a.profile.Province = req.Province
	}
	a.profile.UpdatedAt = g.now().UTC().Format(time.RFC3339)
	p := a.profile
	g.mu.Unlock()

	writeOK(w, p)
}

func (g *Gateway) uploadAvatar(w http.ResponseWriter, r *http.Request, a *account) {
	if err := r.ParseMultipartForm(filex.MaxUploadSize); err != nil {
		badRequest(w, "invalid multipart body")
		return
	}
	f, hdr, err := r.FormFile("avatar")
	if err != nil {
		badRequest(w, "avatar file is required")
		return
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		badRequest(w, "unreadable avatar")
		return
	}

	url := AvatarBaseURL + a.id + "/" + hdr.Filename

	g.mu.Lock()
	a.profile.AvatarURL = url
	g.mu.Unlock()

	writeOK(w, map[string]string{"avatar_url": url})
}
