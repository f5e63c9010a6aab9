package api

import (
	"context"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/transport"
)

const captchaHeader = "X-Captcha-Id"

type Captcha struct {
	ID    string
	Image []byte
}

type Credentials struct {
	Username      string
	Password      string
	CaptchaID     string
	CaptchaAnswer string
}

type RestoreRequest struct {
	Username      string
	Mnemonic      string
	NewPassword   string
	CaptchaID     string
	CaptchaAnswer string
}

type RegisterResult struct {
	Token    string
	Mnemonic string
	Message  string
}

func (c *Client) FetchCaptcha(ctx context.Context) (Captcha, error) {
	resp, err := c.get(ctx, "/captcha", nil)
	if err != nil {
		return Captcha{}, err
	}
	id := strings.TrimSpace(resp.Header.Get(captchaHeader))
	if id == "" {
		return Captcha{}, apperr.Shape("/captcha", "missing "+captchaHeader+" header")
	}
	return Captcha{ID: id, Image: resp.Raw}, nil
}

func (c *Client) Login(ctx context.Context, cr Credentials) (string, error) {
	resp, err := c.post(ctx, "/auth", nil, transport.Fields{
		"username":       cr.Username,
		"password":       cr.Password,
		"captcha_id":     cr.CaptchaID,
		"captcha_answer": cr.CaptchaAnswer,
	})
	if err != nil {
		return "", err
	}
	return tokenFrom("/auth", resp.Body, "token")
}

func (c *Client) Register(ctx context.Context, cr Credentials) (RegisterResult, error) {
	resp, err := c.post(ctx, "/register", nil, transport.Fields{
		"username":       cr.Username,
		"password":       cr.Password,
		"captcha_id":     cr.CaptchaID,
		"captcha_answer": cr.CaptchaAnswer,
	})
	if err != nil {
		return RegisterResult{}, err
	}
	token, err := tokenFrom("/register", resp.Body, "token")
	if err != nil {
		return RegisterResult{}, err
	}
	obj, _ := resp.Body.Object()
	mnemonic, _ := stringField(obj, "encrypted", "mnemonic")
	message, _ := stringField(obj, "message")
	return RegisterResult{Token: token, Mnemonic: mnemonic, Message: message}, nil
}

// Restore reads the new token from `token`, falling back to `encrypted`.
func (c *Client) Restore(ctx context.Context, r RestoreRequest) (string, error) {
	resp, err := c.post(ctx, "/restoreuser", nil, transport.Fields{
		"username":       r.Username,
		"mnemonic":       r.Mnemonic,
		"new_password":   r.NewPassword,
		"captcha_id":     r.CaptchaID,
		"captcha_answer": r.CaptchaAnswer,
	})
	if err != nil {
		return "", err
	}
	return tokenFrom("/restoreuser", resp.Body, "token", "encrypted")
}

func tokenFrom(op string, body transport.Body, keys ...string) (string, error) {
	obj, err := objectOf(op, body)
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if s, ok := stringField(obj, key); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", apperr.Shape(op, "missing token")
}
