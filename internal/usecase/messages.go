package usecase

// Messages shown to the visitor. Diagnostic detail goes to the log only.
const (
	MsgEmailRequired    = "El email es obligatorio"
	MsgPhoneRequired    = "El teléfono es obligatorio"
	MsgPasswordRequired = "La contraseña es obligatoria"
	MsgEmailFormat      = "El formato del email no es válido"
	MsgPasswordLength   = "La contraseña debe tener al menos 6 caracteres"
	MsgPhoneFormat      = "El teléfono debe contener exactamente 10 dígitos"

	MsgEmailTaken          = "Este email ya está registrado. Por favor, inicia sesión o usa otro email."
	MsgRegistrationSystem  = "Error en el sistema. Por favor, intenta nuevamente más tarde."
	MsgLoginSystem         = "Error en el sistema. Por favor, intenta nuevamente."
	MsgUnexpected          = "Ocurrió un error inesperado"
	MsgInvalidCredentials  = "Email o contraseña incorrectos"
	MsgInactiveAccount     = "Esta cuenta ha sido desactivada. Contacta al soporte técnico."
	MsgUnauthorizedAccess  = "Acceso no autorizado"
	MsgRateLimited         = "Demasiados intentos. Por favor, espera un momento e intenta nuevamente."
	MsgRegistrationSuccess = "¡Registro exitoso! Bienvenido a NENEMI-A."
	MsgWelcomeBack         = "¡Bienvenido de vuelta a NENEMI-A!"
	MsgSessionExpired      = "Tu sesión ha expirado. Por favor, inicia sesión nuevamente."
	MsgLoggedOut           = "Has cerrado sesión exitosamente. ¡Hasta pronto!"
)
