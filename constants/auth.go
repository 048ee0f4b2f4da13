package constants

// Role carried in session token claims. Citizens never receive a session
// token; registration is their only authenticated interaction.
const RoleAuthority = "pothole-backend.authority"
