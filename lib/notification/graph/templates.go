package graph

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/pkg/errors"
)

//go:embed templates
var templatesFS embed.FS

var (
	htmlTpl = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/email.html"))
	textTpl = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/email.txt"))
)

const (
	accentDefault = "#0078d4"
	accentGood    = "#107c10"
	accentDanger  = "#d13438"
)

type fact struct {
	Title string
	Value string
}

type emailData struct {
	Header    string
	Intro     string
	Facts     []fact
	Note      string
	Link      string
	LinkTitle string
	Accent    string
}

func render(data emailData) (htmlBody, textBody string, err error) {
	if data.Accent == "" {
		data.Accent = accentDefault
	}
	var htmlBuf, textBuf bytes.Buffer
	if err = htmlTpl.ExecuteTemplate(&htmlBuf, "email.html", data); err != nil {
		return "", "", errors.Wrap(err, "ошибка формирования html письма")
	}
	if err = textTpl.ExecuteTemplate(&textBuf, "email.txt", data); err != nil {
		return "", "", errors.Wrap(err, "ошибка формирования текста письма")
	}
	return htmlBuf.String(), textBuf.String(), nil
}
