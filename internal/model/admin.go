package model

// Admin is the single operator account allowed to manage subcontractor
// links and inspect worksites and open sessions.  It is configured through
// the environment rather than stored in the database.
//
// Fields:
//  Username     – login name.
//  PasswordHash – bcrypt hash of the password.
type Admin struct {
    Username     string
    PasswordHash string
}

// RoleAdmin is the JWT role claim carried by admin access tokens.
const RoleAdmin = "ADMIN"
