package domain

const (
	MailTypeCreateUser             = "create_user"
	MailTypeResetPassword          = "reset_password"
	MailTypeChangeEmail            = "change_email"
	MailTypeAppointmentScheduled   = "appointment_scheduled"
	MailTypeAppointmentStatus      = "appointment_status"
	MailTypeContactMessage         = "contact_message"
	MailTypeNewsletterSubscription = "newsletter_subscription"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type AppointmentMailData struct {
	FullName  string `json:"fullName"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
}

type ContactMessageMailData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
}

type NewsletterMailData struct {
	UnsubscribeURL string `json:"unsubscribeURL"`
}
