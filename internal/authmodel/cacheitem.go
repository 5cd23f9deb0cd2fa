package authmodel

import (
	"strings"
	"time"
)

// CacheItem is a token cache entry.
type CacheItem struct {
	Resource        string
	Authority       string
	ClientID        string
	AccessToken     string
	AccessTokenType string
	RefreshToken    string
	ExpiresOn       time.Time
	UserID          string
	TenantID        string
}

// Canonical field values used by CanonicalCacheItem.
const (
	CanonicalResource     = "resource"
	CanonicalAuthority    = "https://login.windows.net/msopentechbv.onmicrosoft.com"
	CanonicalClientID     = "client id"
	CanonicalAccessToken  = "access token"
	CanonicalTokenType    = "access token type"
	CanonicalRefreshToken = "refresh token"
	CanonicalUserID       = "boris@msopentechbv.onmicrosoft.com"
	CanonicalTenantID     = "msopentechbv.onmicrosoft.com"
)

// CanonicalExpiresOn is fixed so two canonical items compare equal.
var CanonicalExpiresOn = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

// CanonicalCacheItem returns an item with every field set to a known value.
func CanonicalCacheItem() *CacheItem {
	return &CacheItem{
		Resource:        CanonicalResource,
		Authority:       CanonicalAuthority,
		ClientID:        CanonicalClientID,
		AccessToken:     CanonicalAccessToken,
		AccessTokenType: CanonicalTokenType,
		RefreshToken:    CanonicalRefreshToken,
		ExpiresOn:       CanonicalExpiresOn,
		UserID:          CanonicalUserID,
		TenantID:        CanonicalTenantID,
	}
}

// NewCacheItem validates the identifying fields and creates an item.
// It returns (nil, *Error) naming the first blank argument.
func NewCacheItem(resource, authority, clientID string) (*CacheItem, error) {
	switch {
	case strings.TrimSpace(resource) == "":
		return nil, InvalidArgumentError("resource", "")
	case strings.TrimSpace(authority) == "":
		return nil, InvalidArgumentError("authority", "")
	case strings.TrimSpace(clientID) == "":
		return nil, InvalidArgumentError("clientId", "")
	}
	return &CacheItem{Resource: resource, Authority: authority, ClientID: clientID}, nil
}

// Equal compares every field. Two nil items are equal.
func (c *CacheItem) Equal(o *CacheItem) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Resource == o.Resource &&
		c.Authority == o.Authority &&
		c.ClientID == o.ClientID &&
		c.AccessToken == o.AccessToken &&
		c.AccessTokenType == o.AccessTokenType &&
		c.RefreshToken == o.RefreshToken &&
		c.ExpiresOn.Equal(o.ExpiresOn) &&
		c.UserID == o.UserID &&
		c.TenantID == o.TenantID
}
