package credential

// TokenKeys are the recognized token aliases, in lookup order.
var TokenKeys = []string{"token", "accessToken", "authToken", "jwtToken"}

// RoleKeys are the recognized role aliases, in lookup order.
var RoleKeys = []string{"role", "userRole"}

// SessionMessageKey holds the one-shot reason shown on the login surface after a forced logout.
const SessionMessageKey = "sessionExpiredMessage"
