package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kirinyoku/tour-go/internal/notify"
)

//go:embed templates/*
var templateFS embed.FS

var printer = message.NewPrinter(language.English)

var funcs = map[string]any{
	"longDate": func(t time.Time) string { return t.UTC().Format("Monday, January 2, 2006") },
	"money":    func(v float64) string { return printer.Sprintf("$%.2f", v) },
	"guests": func(n int) string {
		if n == 1 {
			return "1 person"
		}
		return fmt.Sprintf("%d people", n)
	},
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.txt"))
)

// Rendered is a ready-to-send email. Text is empty for HTML-only mails.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type view struct {
	notify.BookingEmail
	BookingURL string
	Brand      string
	Support    string
	Year       int
}

// Render fills the template for msg.Kind.
func Render(msg notify.Message, brand, appURL string) (Rendered, error) {
	const op = "mail.Render"

	var name, subject string
	switch msg.Kind {
	case notify.KindConfirmation:
		name, subject = "confirmation", "Booking Confirmed: "+msg.Booking.TourName
	case notify.KindCancellation:
		name, subject = "cancellation", "Booking Cancelled: "+msg.Booking.TourName
	default:
		return Rendered{}, fmt.Errorf("%s: unknown kind %q", op, msg.Kind)
	}

	v := view{
		BookingEmail: msg.Booking,
		BookingURL:   appURL + "/bookings/" + msg.Booking.BookingID,
		Brand:        brand,
		Support:      "support@travelhub.com",
		Year:         time.Now().Year(),
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", v); err != nil {
		return Rendered{}, fmt.Errorf("%s:%w", op, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", v); err != nil {
		return Rendered{}, fmt.Errorf("%s:%w", op, err)
	}

	return Rendered{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}
