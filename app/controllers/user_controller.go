package controllers

import (
	"net/http"

	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/pkg/ctx"
)

// UserController serves /api/users. Profiles are created by the external
// identity service, so POST and DELETE are refused with a fixed 405.
type UserController struct {
	users *repositories.UserRepository
}

// NewUserController creates the controller.
func NewUserController(users *repositories.UserRepository) *UserController {
	return &UserController{users: users}
}

// UserPatch is the partial-update payload.
type UserPatch struct {
	FullName  *string `json:"full_name"`
	Role      *string `json:"role" validate:"nullable,in=admin,staff,viewer"`
	AvatarURL *string `json:"avatar_url" validate:"nullable,url"`
}

func (p UserPatch) changes() map[string]any {
	changes := map[string]any{}
	if p.FullName != nil {
		changes["full_name"] = *p.FullName
	}
	if p.Role != nil {
		changes["role"] = *p.Role
	}
	if p.AvatarURL != nil {
		changes["avatar_url"] = *p.AvatarURL
	}
	return changes
}

// Index lists all profiles sorted by full name.
func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		c.StoreError("Failed to fetch user profiles", err)
		return
	}
	c.OK(users)
}

// Show returns one profile, or a 200 with a null body when the id has no
// profile row yet.
func (uc *UserController) Show(c *ctx.Context) {
	user, err := uc.users.Find(c.Context(), c.Param("id"))
	if err != nil {
		c.StoreError("Failed to fetch user profile", err)
		return
	}
	if user == nil {
		c.Null()
		return
	}
	c.OK(user)
}

// Update applies a partial update and returns the fresh row.
func (uc *UserController) Update(c *ctx.Context) {
	var patch UserPatch
	if !c.BindJSON(&patch) {
		return
	}

	changes := patch.changes()
	if len(changes) == 0 {
		c.Error(http.StatusBadRequest, "No fields to update")
		return
	}

	user, err := uc.users.Update(c.Context(), c.Param("id"), changes)
	if err != nil {
		c.StoreError("Failed to update user profile", err)
		return
	}
	c.OK(user)
}

// Store always refuses; accounts are created by the signup flow.
func (uc *UserController) Store(c *ctx.Context) {
	c.MethodNotAllowed("User creation not supported via this endpoint. Use signup flow.")
}

// Destroy always refuses; deleting an account cascades from the identity
// service.
func (uc *UserController) Destroy(c *ctx.Context) {
	c.MethodNotAllowed("User deletion not supported via this endpoint.")
}
