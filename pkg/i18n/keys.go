package i18n

// Message ids shared by handlers and pages.
const (
	MsgUnauthorized         = "unauthorized"
	MsgInvalidCredentials   = "invalid_credentials"
	MsgRoleNotHeld          = "role_not_held"
	MsgRoleExists           = "role_exists"
	MsgTooManyAttempts      = "too_many_attempts"
	MsgInternal             = "internal_error"
	MsgEventIDRequired      = "event_id_required"
	MsgEventNotFound        = "event_not_found"
	MsgRegistered           = "registered"
	MsgAlreadyRegistered    = "already_registered"
	MsgUnregistered         = "unregistered"
	MsgNotRegistered        = "not_registered"
	MsgNotAttended          = "feedback_not_attended"
	MsgFeedbackExists       = "feedback_exists"
	MsgFeedbackThanks       = "feedback_thanks"
	MsgInvalidToken         = "invalid_checkin_token"
	MsgEventCreated         = "event_created"
	MsgEventInPast          = "event_in_past"
	MsgInvalidName          = "invalid_name"
	MsgWeakPassword         = "weak_password"
	MsgInvalidEmail         = "invalid_email"
	MsgInvalidForm          = "invalid_form"
	MsgNegativeBudget       = "negative_budget"
	MsgEmptyAgendaItem      = "empty_agenda_item"
	MsgInvalidSession       = "invalid_session"
	MsgUnknownSpeaker       = "unknown_speaker"
	MsgNotOrganiser         = "not_event_organiser"
	MsgInvalidRating        = "invalid_rating"
	MsgRegistrationNotFound = "registration_not_found"
)
