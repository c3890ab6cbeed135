// Package view はバイナリに埋め込んだHTMLテンプレートと静的ファイルを提供する。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/hitoshi/tutorplanet/internal/model"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ページテンプレート名。
const (
	PageIndex            = "index"
	PageBrowseTutors     = "browse-tutors"
	PageTutorProfile     = "tutor-profile"
	PageTutorSignup      = "tutor-signup"
	PageTutorLogin       = "tutor-login"
	PageTutorAccount     = "tutor-account"
	PagePermissionDenied = "permission_denied"
	PageNotFound         = "not_found"
	PageError            = "error"
)

// PageData はテンプレートに渡す値。
type PageData struct {
	Title    string
	Identity model.Identity
	Tutor    *model.TutorProfile
	Tutors   []model.TutorProfile
	Message  string
}

// LoggedInTutorID はナビゲーション表示用に、講師としてログイン中ならそのIDを返す。
func (d PageData) LoggedInTutorID() int64 {
	if d.Identity.Kind() != model.PrincipalTutor {
		return 0
	}
	id, _ := d.Identity.UserID()
	return id
}

// Renderer はページ名ごとに、共通レイアウトと合成済みのテンプレートを保持する。
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer は埋め込みテンプレートを読み込んでRendererを生成する。
// templates/shared 配下は全ページ共通、templates 直下の各ファイルが1ページとなる。
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	return newRenderer(sub)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	root := template.New("root")

	shared, err := fs.Glob(fsys, "shared/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list shared templates: %w", err)
	}
	for _, p := range shared {
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if _, err := root.New(p).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
	}

	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		clone, err := root.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", p, err)
		}
		name := strings.TrimSuffix(p, path.Ext(p))
		if templates[name], err = clone.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
	}

	return &Renderer{templates: templates}, nil
}

// Render はページをwに書き出す。
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("template %s not found", page)
	}
	return tmpl.Execute(w, data)
}

// RenderHTTP はページをバッファに描画してから、指定ステータスでレスポンスに書き出す。
// 描画に失敗した場合はレスポンスに何も書かずにエラーを返す。
func (r *Renderer) RenderHTTP(w http.ResponseWriter, status int, page string, data PageData) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler は埋め込み静的ファイルを配信するハンドラーを返す。
// prefixはルーティング上のパスプレフィックス（例: "/static/"）。
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("embedded static directory missing: " + err.Error())
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
