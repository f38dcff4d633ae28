package delivery

import (
	"fmt"
	"strings"

	"user_service/internal/domain"
)

const (
	usersPath = "/api/users"

	relSelf     = "self"
	relAllUsers = "all-users"
	relUpdate   = "update"
	relDelete   = "delete"
)

type Link struct {
	Href string `json:"href"`
}

// UserModel is a user representation decorated with navigation links.
type UserModel struct {
	domain.UserResponse
	Links map[string]Link `json:"_links"`
}

// LinkBuilder derives user links from the route table. BaseURL is prepended
// to every href; when empty the hrefs are root-relative.
type LinkBuilder struct {
	BaseURL string
}

func NewLinkBuilder(baseURL string) LinkBuilder {
	return LinkBuilder{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (b LinkBuilder) userHref(id int64) string {
	return fmt.Sprintf("%s%s/%d", b.BaseURL, usersPath, id)
}

func (b LinkBuilder) UserLinks(id int64) map[string]Link {
	item := Link{Href: b.userHref(id)}
	return map[string]Link{
		relSelf:     item,
		relAllUsers: {Href: b.BaseURL + usersPath},
		relUpdate:   item,
		relDelete:   item,
	}
}

func (b LinkBuilder) ToModel(user domain.UserResponse) UserModel {
	return UserModel{UserResponse: user, Links: b.UserLinks(user.ID)}
}

func (b LinkBuilder) ToModels(users []domain.UserResponse) []UserModel {
	out := make([]UserModel, 0, len(users))
	for _, u := range users {
		out = append(out, b.ToModel(u))
	}
	return out
}
