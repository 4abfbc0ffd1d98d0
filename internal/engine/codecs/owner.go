package codecs

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/chrontax/cra/internal/engine"
)

// Owner is the user and group recorded in tar headers.
type Owner struct {
	UID   int
	GID   int
	User  string
	Group string
}

// CurrentOwner resolves the numeric ids and names of the running process.
func CurrentOwner() (Owner, error) {
	uid, gid := os.Getuid(), os.Getgid()

	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return Owner{}, fmt.Errorf("%w: user %d: %w", engine.ErrOwnerLookup, uid, err)
	}

	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return Owner{}, fmt.Errorf("%w: group %d: %w", engine.ErrOwnerLookup, gid, err)
	}

	return Owner{UID: uid, GID: gid, User: u.Username, Group: g.Name}, nil
}

func (o Options) owner() (Owner, error) {
	if o.Owner != nil {
		return *o.Owner, nil
	}
	return CurrentOwner()
}
