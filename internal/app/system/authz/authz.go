// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. Callers can trust that ok=true means a signed-in
// user with a valid ObjectID, which is the owner key for every record query.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session: fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// OwnerID returns the signed-in user's ObjectID, or NilObjectID.
func OwnerID(r *http.Request) primitive.ObjectID {
	_, id, _ := UserCtx(r)
	return id
}

// Owns reports whether the signed-in user is owner.
func Owns(r *http.Request, owner primitive.ObjectID) bool {
	_, id, ok := UserCtx(r)
	return ok && !owner.IsZero() && id == owner
}
