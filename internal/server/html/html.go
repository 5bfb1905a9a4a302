package html

import (
	"embed"
	"html/template"
	"io"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

//go:embed pages/*.html
var files embed.FS

var (
	adminTemplate    = parse("pages/admin.html")
	accountsTemplate = parse("pages/accounts.html")
	formTemplate     = parse("pages/form.html")
	loginTemplate    = parse("pages/login.html")
)

type AdminParams struct {
	Title        string
	Errors       []string
	Notice       string
	Scope        string
	IsSuperAdmin bool
	Applications []domain.Application
	SortLinks    map[string]string
}

func AdminPage(w io.Writer, p AdminParams) error {
	return adminTemplate.Execute(w, p)
}

type AccountsParams struct {
	Title    string
	Errors   []string
	Accounts []domain.Account
}

func AccountsPage(w io.Writer, p AccountsParams) error {
	return accountsTemplate.Execute(w, p)
}

type FormParams struct {
	Title      string
	Tenant     string
	TenantName string
	WorkerRows []int
	Error      string
	Notice     string
}

func FormPage(w io.Writer, p FormParams) error {
	return formTemplate.Execute(w, p)
}

type LoginParams struct {
	Title      string
	Target     string
	TargetName string
	Error      string
}

func LoginPage(w io.Writer, p LoginParams) error {
	return loginTemplate.Execute(w, p)
}

func parse(file string) *template.Template {
	return template.Must(
		template.New("layout.html").Funcs(template.FuncMap{
			"datePrefix": datePrefix,
		}).ParseFS(files, "pages/layout.html", file))
}

// datePrefix shows just the date part of a client-stamped timestamp.
func datePrefix(createdAt string) string {
	if len(createdAt) < 10 {
		return createdAt
	}
	return createdAt[:10]
}
