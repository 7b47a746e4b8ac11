package mail

type LeadAlertEmailData struct {
	CompanyName string
	LeadName    string
	LeadEmail   string
	LeadPhone   string
	Source      string
	FormName    string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
}
