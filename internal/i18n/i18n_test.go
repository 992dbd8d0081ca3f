package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	return WithLanguage(context.Background(), lang)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Classboard" {
		t.Errorf("T(AppTitle) = %q, want 'Classboard'", got)
	}
	if got := T(ctx, "TierBasic"); got != "Basic consolidation" {
		t.Errorf("T(TierBasic) = %q, want 'Basic consolidation'", got)
	}
}

func TestTranslateChinese(t *testing.T) {
	ctx := initLang(t, "zh")

	if got := T(ctx, "AppTitle"); got != "课堂看板" {
		t.Errorf("T(AppTitle) = %q, want '课堂看板'", got)
	}
	if got := T(ctx, "TierExtended"); got != "拓展探究" {
		t.Errorf("T(TierExtended) = %q, want '拓展探究'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "HomeworkDone", 1); got != "1 plan generated." {
		t.Errorf("Tp(HomeworkDone, 1) = %q", got)
	}
	if got := Tp(ctx, "HomeworkDone", 48); got != "48 plans generated." {
		t.Errorf("Tp(HomeworkDone, 48) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "zh")

	got := Td(ctx, "AtRiskCount", map[string]any{"Count": 5})
	if got != "需关注: 5人" {
		t.Errorf("Td(AtRiskCount) = %q, want '需关注: 5人'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}
	langs := Languages()
	slices.Sort(langs)
	if !slices.Equal(langs, []string{"en", "zh"}) {
		t.Fatalf("Languages() = %v", langs)
	}

	en := WithLanguage(context.Background(), "en")
	zh := WithLanguage(context.Background(), "zh")
	for _, id := range []string{"NavDashboard", "StepClassModel", "UploadPhoto", "Greeting"} {
		if T(en, id) == id || T(zh, id) == id {
			t.Errorf("message %s missing in a locale", id)
		}
		if T(en, id) == T(zh, id) {
			t.Errorf("message %s not translated", id)
		}
	}
}

func TestMatch(t *testing.T) {
	if err := Init("zh"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		prefs []string
		want  string
	}{
		{nil, "zh"},
		{[]string{""}, "zh"},
		{[]string{"en"}, "en"},
		{[]string{"en-US,en;q=0.9"}, "en"},
		{[]string{"zh-CN,zh;q=0.9,en;q=0.8"}, "zh"},
		{[]string{"fr"}, "zh"},
		{[]string{"!!"}, "zh"},
	}
	for _, tt := range tests {
		if got := Match(tt.prefs...); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.prefs, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("zh"); err != nil {
		t.Fatal(err)
	}
	var got string
	h := Middleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Lang(r.Context())
	}))

	tests := []struct {
		name   string
		target string
		accept string
		cookie string
		want   string
	}{
		{"default", "/", "", "", "zh"},
		{"header", "/", "en-GB,en;q=0.8", "", "en"},
		{"cookie beats header", "/", "en", "zh", "zh"},
		{"query beats cookie", "/?lang=en", "", "zh", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: Cookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got != tt.want {
				t.Errorf("Lang = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddlewareCookiePath(t *testing.T) {
	if err := Init("zh"); err != nil {
		t.Fatal(err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		basePath string
		want     string
	}{
		{"", "/"},
		{"/class3", "/class3/"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Middleware(tt.basePath)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("basePath %q: got %d cookies, want 1", tt.basePath, len(cookies))
		}
		if cookies[0].Name != Cookie || cookies[0].Value != "en" {
			t.Errorf("basePath %q: cookie %s=%s, want %s=en", tt.basePath, cookies[0].Name, cookies[0].Value, Cookie)
		}
		if cookies[0].Path != tt.want {
			t.Errorf("basePath %q: cookie path = %q, want %q", tt.basePath, cookies[0].Path, tt.want)
		}
	}
}
