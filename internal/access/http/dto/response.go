package dto

import (
	"time"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
)

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MapGroupToResponse converts a group to an API response.
func MapGroupToResponse(group *accessDomain.Group) GroupResponse {
	return GroupResponse{
		ID:        group.ID.String(),
		Name:      group.Name,
		CreatedBy: group.CreatedBy.String(),
		CreatedAt: group.CreatedAt,
	}
}

// MemberResponse represents a group membership.
type MemberResponse struct {
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// MapMemberToResponse converts a membership to an API response.
func MapMemberToResponse(membership *accessDomain.Membership) MemberResponse {
	return MemberResponse{
		GroupID:   membership.GroupID.String(),
		UserID:    membership.UserID.String(),
		IsAdmin:   membership.IsAdmin,
		CreatedAt: membership.CreatedAt,
	}
}

// ListMembersResponse represents a group roster.
type ListMembersResponse struct {
	Data []MemberResponse `json:"data"`
}

// MapMembersToListResponse converts memberships to a list response.
func MapMembersToListResponse(members []*accessDomain.Membership) ListMembersResponse {
	data := make([]MemberResponse, 0, len(members))
	for _, membership := range members {
		data = append(data, MapMemberToResponse(membership))
	}
	return ListMembersResponse{Data: data}
}
