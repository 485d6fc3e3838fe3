// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package guard implements per-request authorization against the
role -> permission -> access grant matrix.

Every protected request is reduced to a (url, method, module) triple: the URL
is normalized so volatile segments (record IDs, emails) collapse into a `?`
wildcard, and the module is derived from the path shape. The caller's role
must hold an access grant for the permission matching that triple, otherwise
the request is denied.

# Fail-Closed

The guard re-reads the caller's role from storage on every request, so a
revoked role never outlives its token. Any storage failure denies the
request.
*/
package guard

import (
	"net/http"
	"strings"

	"github.com/centinela/iam/internal/platform/apperr"
	"github.com/centinela/iam/internal/platform/ctxutil"
	"github.com/centinela/iam/internal/platform/respond"
)

// # Path Normalization

// NormalizePath collapses volatile path segments into the `?` wildcard.
//
// A segment is volatile when it is a 24-character hex identifier, purely
// numeric (version segments like "v1" are alphanumeric and survive), or
// contains "@" (email addresses used as path parameters).
//
// Example:
//
//	NormalizePath("/api/v1/user/507f1f77bcf86cd799439011") // "/api/v1/user/?"
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")

	for index, segment := range segments {
		if isVolatileSegment(segment) {
			segments[index] = "?"
		}
	}

	return strings.Join(segments, "/")
}

// ModuleOf derives the module name from a request path.
//
// When the path contains an "api" segment, the module is the segment two
// positions after it (skipping the version). Otherwise it is the first
// non-empty segment.
func ModuleOf(path string) string {
	segments := nonEmptySegments(path)

	for index, segment := range segments {
		if segment == "api" && index+2 < len(segments) {
			return segments[index+2]
		}
	}

	if len(segments) > 0 {
		return segments[0]
	}
	return ""
}

// isVolatileSegment reports whether a path segment carries per-record data.
func isVolatileSegment(segment string) bool {
	if segment == "" {
		return false
	}
	if strings.Contains(segment, "@") {
		return true
	}
	if len(segment) == 24 && isHex(segment) {
		return true
	}
	return isNumeric(segment)
}

func isHex(value string) bool {
	for _, character := range value {
		switch {
		case character >= '0' && character <= '9':
		case character >= 'a' && character <= 'f':
		case character >= 'A' && character <= 'F':
		default:
			return false
		}
	}
	return true
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, character := range value {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

func nonEmptySegments(path string) []string {
	raw := strings.Split(path, "/")
	segments := raw[:0]
	for _, segment := range raw {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// # Middleware

// Guard is the chi middleware enforcing the access matrix.
type Guard struct {
	directory Directory
}

// New constructs a [Guard] backed by the given directory.
func New(directory Directory) *Guard {
	return &Guard{directory: directory}
}

/*
Middleware authorizes the request against the access matrix.

Description: Mounted after the authentication middleware on every protected
route. Unauthenticated callers are rejected with 401 (distinct from the 403
family below); everything else is a matrix decision.

Decision sequence:
 1. Resolve the caller's role from storage (not the token).
 2. Normalize the URL and derive the module.
 3. Look up the permission by exact (url, method, module).
 4. Look up the access grant by (role, permission).
*/
func (guard *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		roleID, err := guard.directory.UserRole(request.Context(), claims.UserID)
		if err != nil {
			respond.Error(writer, request, denied(err, "User has no role assigned"))
			return
		}

		url := NormalizePath(request.URL.Path)
		module := ModuleOf(request.URL.Path)

		permissionID, err := guard.directory.PermissionID(request.Context(), url, request.Method, module)
		if err != nil {
			respond.Error(writer, request, denied(err, "Permission not found"))
			return
		}

		allowed, err := guard.directory.HasAccess(request.Context(), roleID, permissionID)
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
		if !allowed {
			respond.Error(writer, request, apperr.Forbidden("Access denied"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// denied maps a missing row to the given 403 message and keeps anything else
// as an opaque server error. Either way the request does not pass.
func denied(err error, message string) error {
	ae := apperr.As(err)
	if ae != nil && ae.Code == "NOT_FOUND" {
		return apperr.Forbidden(message)
	}
	return apperr.Internal(err)
}
