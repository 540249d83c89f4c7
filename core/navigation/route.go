package navigation

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidRoute is returned by ParseRoute for paths it does not know.
var ErrInvalidRoute = errors.New("navigation: invalid route")

// Kind is the shape of a route.
type Kind int

const (
	None Kind = iota
	Profile
	PhotoList
	SinglePhoto
	UserList
)

func (k Kind) String() string {
	switch k {
	case Profile:
		return "profile"
	case PhotoList:
		return "list"
	case SinglePhoto:
		return "single"
	case UserList:
		return "users"
	default:
		return "none"
	}
}

// Route identifies a view.
type Route struct {
	Kind    Kind
	UserID  string
	PhotoID string
}

// Users returns the member list route.
func Users() Route { return Route{Kind: UserList} }

// ProfileOf returns the profile route of a user.
func ProfileOf(userID string) Route { return Route{Kind: Profile, UserID: userID} }

// List returns the photo list route of a user.
func List(userID string) Route { return Route{Kind: PhotoList, UserID: userID} }

// Single returns the route of one photo.
func Single(userID, photoID string) Route {
	return Route{Kind: SinglePhoto, UserID: userID, PhotoID: photoID}
}

// IsZero reports whether r is the empty route.
func (r Route) IsZero() bool { return r == Route{} }

// String returns the path of the route. The empty route is "/".
func (r Route) String() string {
	switch r.Kind {
	case UserList:
		return "/users"
	case Profile:
		return "/users/" + url.PathEscape(r.UserID)
	case PhotoList:
		return "/photos/" + url.PathEscape(r.UserID)
	case SinglePhoto:
		return "/photos/" + url.PathEscape(r.UserID) + "/" + url.PathEscape(r.PhotoID)
	default:
		return "/"
	}
}

// ParseRoute parses a path produced by Route.String. "/" and "" give the
// empty route; "/users" is the member list.
func ParseRoute(path string) (Route, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return Route{}, nil
	}

	parts := strings.Split(path, "/")
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil || v == "" {
			return Route{}, ErrInvalidRoute
		}
		parts[i] = v
	}

	switch {
	case parts[0] == "users" && len(parts) == 1:
		return Users(), nil
	case parts[0] == "users" && len(parts) == 2:
		return ProfileOf(parts[1]), nil
	case parts[0] == "photos" && len(parts) == 2:
		return List(parts[1]), nil
	case parts[0] == "photos" && len(parts) == 3:
		return Single(parts[1], parts[2]), nil
	}
	return Route{}, ErrInvalidRoute
}
