package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// Actor es quien ejecuta una operación; se arma desde Claims en el borde HTTP.
type Actor struct {
	ID   string
	Role Role
}

func (c Claims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}
