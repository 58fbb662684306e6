// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller of a CRM sync endpoint.
// CRM webhooks authenticate as a service user of one company; the tenant
// claim scopes every lookup the handler performs.
type Identity interface {
	UserID() uuid.UUID
	CompanyID() (uuid.UUID, bool)
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	companyID     *uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) CompanyID() (uuid.UUID, bool) {
	if i.companyID == nil {
		return uuid.Nil, false
	}
	return *i.companyID, true
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	id := &identity{
		userID:        uid,
		authenticated: true,
	}
	if tenant, ok := c.Get(ContextTenantIDKey); ok {
		if tid, ok := tenant.(uuid.UUID); ok {
			id.companyID = &tid
		}
	}
	return id
}

// MustGetCompany returns the caller's identity and company. Requests without
// a tenant claim are aborted with 403 since every sync operation is company scoped.
func MustGetCompany(c *gin.Context) (Identity, uuid.UUID, bool) {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil, uuid.Nil, false
	}
	companyID, ok := id.CompanyID()
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "company context required"})
		return nil, uuid.Nil, false
	}
	return id, companyID, true
}
