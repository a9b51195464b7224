package rbac

// ActorRole is the resolved role of an acting user. The reserved admin role
// resolves to SuperuserRole so the all-permissions bypass is carried by the
// type, not by comparing role names at every check site.
type ActorRole interface {
	RoleName() string
	isActorRole()
}

// SuperuserRole implicitly holds every permission in the catalog.
type SuperuserRole struct {
	ID   uint64
	Name string
}

func (r SuperuserRole) RoleName() string { return r.Name }
func (r SuperuserRole) isActorRole()     {}

// StandardRole holds exactly the permissions currently associated to it.
type StandardRole struct {
	ID   uint64
	Name string
}

func (r StandardRole) RoleName() string { return r.Name }
func (r StandardRole) isActorRole()     {}
