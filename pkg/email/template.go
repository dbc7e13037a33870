package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	textTemplate "text/template"
)

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// MessageLines splits the message on line breaks so the HTML template can
// join them with <br> while escaping each line.
func (d ContactEmailData) MessageLines() []string {
	normalized := strings.ReplaceAll(d.Message, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #111827; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9fafb; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #6366f1; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Contact Form Submission</h1>
        </div>
        <div class="content">
            <div class="field">
                <div class="label">Name:</div>
                <div>{{.Name}}</div>
            </div>
            <div class="field">
                <div class="label">Email:</div>
                <div><a href="mailto:{{.Email}}">{{.Email}}</a></div>
            </div>
            {{- if .Phone}}
            <div class="field">
                <div class="label">Phone:</div>
                <div>{{.Phone}}</div>
            </div>
            {{- end}}
            <div class="field">
                <div class="label">Subject:</div>
                <div>{{.Subject}}</div>
            </div>
            <div class="field">
                <div class="label">Message:</div>
                <div class="message-box">{{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
            </div>
        </div>
        <div class="footer">
            <p>Sent from the website contact form. Reply to this email to answer {{.Name}} directly.</p>
        </div>
    </div>
</body>
</html>`

const contactTextTemplate = `New contact form submission

Name: {{.Name}}
Email: {{.Email}}
{{- if .Phone}}
Phone: {{.Phone}}
{{- end}}
Subject: {{.Subject}}

{{.Message}}
`

var (
	contactHTML = template.Must(template.New("contact").Parse(contactEmailTemplate))
	contactText = textTemplate.Must(textTemplate.New("contact_text").Parse(contactTextTemplate))
)

// RenderContactEmail renders the HTML body and its plain-text alternative.
func RenderContactEmail(data ContactEmailData) (htmlBody, textBody string, err error) {
	var html bytes.Buffer
	if err := contactHTML.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}

	var text bytes.Buffer
	if err := contactText.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("failed to execute text template: %w", err)
	}

	return html.String(), text.String(), nil
}
