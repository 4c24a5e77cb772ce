package domain

import (
	"github.com/google/uuid"
)

// GrantField names the history field recording a grant's level for one target, e.g.
// "user:0199...".
func GrantField(targetType TargetType, targetID uuid.UUID) string {
	return string(targetType) + ":" + targetID.String()
}

// MemberField names the history field recording a membership change of a group.
func MemberField(groupID uuid.UUID) string {
	return string(TargetGroup) + ":" + groupID.String()
}

// MemberValue is the history value identifying a group member.
func MemberValue(userID uuid.UUID) string {
	return "member:" + userID.String()
}
