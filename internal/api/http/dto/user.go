package dto

import (
	"time"

	"github.com/nati-dev/nati-console/internal/users"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func NewUserResponse(u users.UserInfo) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt.UTC()}
}

func NewListUsersResponse(list []users.UserInfo, total int64, page, pageSize int) ListUsersResponse {
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, NewUserResponse(u))
	}
	return ListUsersResponse{Users: out, Total: total, Page: page, PageSize: pageSize}
}
