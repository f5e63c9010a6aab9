package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
	"github.com/sandeepkv93/symbio/internal/transport"
)

type ProfilePage struct {
	Items []model.Profile
	Total int
}

func (c *Client) OwnID(ctx context.Context) (int64, error) {
	resp, err := c.get(ctx, "/api/ownID", nil)
	if err != nil {
		return 0, err
	}
	obj, err := objectOf("/api/ownID", resp.Body)
	if err != nil {
		return 0, err
	}
	id, ok := intField(obj, "user_id", "id")
	if !ok {
		return 0, apperr.Shape("/api/ownID", "missing user_id")
	}
	return id, nil
}

func (c *Client) ProfileByID(ctx context.Context, userID int64) (model.Profile, error) {
	resp, err := c.get(ctx, "/profile/by_id", idQuery("user_id", userID))
	if err != nil {
		return model.Profile{}, err
	}
	obj, err := objectOf("/profile/by_id", resp.Body)
	if err != nil {
		return model.Profile{}, err
	}
	p := decodeProfile(obj)
	if p.UserID == 0 {
		p.UserID = userID
	}
	return p, nil
}

func (c *Client) OwnProfile(ctx context.Context) (model.Profile, error) {
	resp, err := c.get(ctx, "/profile", nil)
	if err != nil {
		return model.Profile{}, err
	}
	obj, err := objectOf("/profile", resp.Body)
	if err != nil {
		return model.Profile{}, err
	}
	return decodeProfile(obj), nil
}

func (c *Client) UpdateProfile(ctx context.Context, u model.ProfileUpdate) error {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := c.post(ctx, "/profile", nil, transport.Fields{
		"full_name": u.FullName,
		"bio":       u.Bio,
		"skills":    skills,
		"avatar":    u.Avatar,
	})
	return err
}

func (c *Client) Profiles(ctx context.Context, limit, offset int) (ProfilePage, error) {
	q := url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}
	resp, err := c.get(ctx, "/profiles", q)
	if err != nil {
		return ProfilePage{}, err
	}
	items, err := listOf("/profiles", resp.Body, "profiles")
	if err != nil {
		c.degrade("/profiles", err)
		return ProfilePage{}, nil
	}
	page := ProfilePage{Items: make([]model.Profile, 0, len(items))}
	for _, item := range items {
		page.Items = append(page.Items, decodeProfile(item))
	}
	if obj, ok := resp.Body.Object(); ok {
		if total, ok := intField(obj, "total"); ok {
			page.Total = int(total)
		}
	}
	return page, nil
}

func (c *Client) Wallet(ctx context.Context, currency string) (model.Wallet, error) {
	resp, err := c.get(ctx, "/api/wallet", url.Values{"currency": []string{currency}})
	if err != nil {
		return model.Wallet{}, err
	}
	obj, err := objectOf("/api/wallet", resp.Body)
	if err != nil {
		return model.Wallet{}, err
	}
	balance, hasBalance := stringField(obj, "balance")
	address, hasAddress := stringField(obj, "address")
	if !hasBalance && !hasAddress {
		return model.Wallet{}, apperr.Shape("/api/wallet", "missing balance and address")
	}
	return model.Wallet{Currency: currency, Balance: balance, Address: address}, nil
}

// SendBitcoin posts an empty object; recipient and amount travel in the query.
// A 2xx text body is kept as the transfer message.
func (c *Client) SendBitcoin(ctx context.Context, to, amount string) (model.Transfer, error) {
	q := url.Values{"to": []string{to}, "amount": []string{amount}}
	resp, err := c.post(ctx, "/api/wallet/bitcoinSend", q, transport.Fields{})
	if err != nil {
		return model.Transfer{}, err
	}
	out := model.Transfer{To: to, Amount: amount}
	if obj, ok := resp.Body.Object(); ok {
		out.TxID, _ = stringField(obj, "tx_id", "txid", "tx_hash")
		out.Message, _ = stringField(obj, "message", "status")
	} else {
		out.Message = strings.TrimSpace(resp.Body.String())
	}
	return out, nil
}

// decodeProfile reads both the flat shape and the nested
// {username, profile:{...}} shape.
func decodeProfile(obj map[string]any) model.Profile {
	p := model.Profile{}
	p.UserID, _ = intField(obj, "user_id", "id")
	p.Username, _ = stringField(obj, "username")
	src := obj
	if nested, ok := obj["profile"].(map[string]any); ok {
		src = nested
		if p.UserID == 0 {
			p.UserID, _ = intField(nested, "user_id")
		}
	}
	p.FullName, _ = stringField(src, "full_name")
	p.Bio, _ = stringField(src, "bio")
	p.Avatar, _ = stringField(src, "avatar")
	p.Skills = stringsField(src, "skills")
	return p
}
