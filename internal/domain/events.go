package domain

type UserEventType string

const (
	UserCreated UserEventType = "user-create"
	UserUpdated UserEventType = "user-update"
	UserDeleted UserEventType = "user-delete"
)

type UserEvent struct {
	Type      UserEventType `json:"-"`
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	IsDeleted bool          `json:"is_deleted"`
}

// DetectUserEvent decides which event, if any, a persist of after produces.
// before is nil for a newly created user. A soft delete takes precedence over
// a rename performed in the same write.
func DetectUserEvent(before *User, after User) (UserEvent, bool) {
	ev := UserEvent{ID: after.ID, Name: after.Name, IsDeleted: after.IsDeleted}
	switch {
	case before == nil:
		ev.Type = UserCreated
	case !before.IsDeleted && after.IsDeleted:
		ev.Type = UserDeleted
	case before.Name != after.Name:
		ev.Type = UserUpdated
	default:
		return UserEvent{}, false
	}
	return ev, true
}
