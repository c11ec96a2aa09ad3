// ABOUTME: Localized message lookup over per-module JSON bundles with lazy
// ABOUTME: loading, {param} substitution, and request locale negotiation.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Manager loads and caches locale bundles laid out as
// <locale>/<module>/<type>.json and resolves dotted message keys against them.
type Manager struct {
	fsys          fs.FS
	defaultLocale string
	supported     []string

	mu      sync.RWMutex
	bundles map[string]map[string]any // "locale/module/type" -> decoded object
}

// NewManager creates a Manager over a bundle tree. Supported locales are the
// top-level directories; if the tree is unreadable only the default locale is
// assumed.
func NewManager(fsys fs.FS, defaultLocale string) *Manager {
	m := &Manager{
		fsys:          fsys,
		defaultLocale: defaultLocale,
		bundles:       make(map[string]map[string]any),
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		log.Printf("component=i18n action=discover error=%v", err)
		m.supported = []string{defaultLocale}
		return m
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), "_") {
			m.supported = append(m.supported, e.Name())
		}
	}
	if len(m.supported) == 0 {
		m.supported = []string{defaultLocale}
	}
	return m
}

// DefaultLocale returns the fallback locale code.
func (m *Manager) DefaultLocale() string { return m.defaultLocale }

// Supported returns the discovered locale codes.
func (m *Manager) Supported() []string { return m.supported }

// ensureLocale maps an arbitrary locale code onto a supported one: exact
// match, then the primary subtag (zh-CN -> zh), then the default.
func (m *Manager) ensureLocale(locale string) string {
	if locale == "" {
		return m.defaultLocale
	}
	for _, s := range m.supported {
		if s == locale {
			return locale
		}
	}
	primary, _, _ := strings.Cut(locale, "-")
	for _, s := range m.supported {
		if s == primary {
			return primary
		}
	}
	return m.defaultLocale
}

// bundle returns the decoded bundle for locale/module/type, loading and
// caching it on first use. A missing or unparseable file caches as empty so
// the disk is not re-hit per lookup.
func (m *Manager) bundle(locale, module, typ string) map[string]any {
	cacheKey := locale + "/" + module + "/" + typ

	m.mu.RLock()
	b, ok := m.bundles[cacheKey]
	m.mu.RUnlock()
	if ok {
		return b
	}

	b = m.loadBundle(locale, module, typ)

	m.mu.Lock()
	m.bundles[cacheKey] = b
	m.mu.Unlock()
	return b
}

func (m *Manager) loadBundle(locale, module, typ string) map[string]any {
	path := locale + "/" + module + "/" + typ + ".json"
	raw, err := fs.ReadFile(m.fsys, path)
	if err != nil {
		log.Printf("component=i18n action=load path=%s error=%v", path, err)
		return map[string]any{}
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("component=i18n action=parse path=%s error=%v", path, err)
		return map[string]any{}
	}

	// Bundle files may carry a metadata block; it is not a message.
	delete(decoded, "metadata")
	return decoded
}

// Text resolves a dotted key of the form "module.type.KEY" (with optional
// nested "CATEGORY.KEY" tails) to a localized string, substituting {param}
// placeholders from params. A key missing in the requested locale falls back
// to the default locale, then to the key's last segment.
func (m *Manager) Text(key string, params map[string]any, locale string) string {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 3 {
		log.Printf("component=i18n action=lookup key=%s error=malformed", key)
		return key
	}
	module, typ, itemKey := parts[0], parts[1], parts[2]

	locale = m.ensureLocale(locale)
	text, ok := lookup(m.bundle(locale, module, typ), itemKey)
	if !ok && locale != m.defaultLocale {
		text, ok = lookup(m.bundle(m.defaultLocale, module, typ), itemKey)
	}
	if !ok {
		segs := strings.Split(itemKey, ".")
		return segs[len(segs)-1]
	}

	return substitute(text, params)
}

// lookup walks nested bundle objects following the dotted item key.
func lookup(bundle map[string]any, itemKey string) (string, bool) {
	var value any = bundle
	for _, seg := range strings.Split(itemKey, ".") {
		obj, ok := value.(map[string]any)
		if !ok {
			return "", false
		}
		value, ok = obj[seg]
		if !ok {
			return "", false
		}
	}
	s, ok := value.(string)
	return s, ok
}

// substitute replaces {name} placeholders with rendered param values.
func substitute(text string, params map[string]any) string {
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// PreferredLocale negotiates the locale for a request: explicit "locale"
// query parameter, then "locale" cookie, then Accept-Language, then the
// default.
func (m *Manager) PreferredLocale(r *http.Request) string {
	if q := r.URL.Query().Get("locale"); q != "" {
		if l := m.ensureLocale(q); l == q {
			return l
		}
	}
	if c, err := r.Cookie("locale"); err == nil && c.Value != "" {
		if l := m.ensureLocale(c.Value); l == c.Value {
			return l
		}
	}
	for _, cand := range parseAcceptLanguage(r.Header.Get("Accept-Language")) {
		l := m.ensureLocale(cand)
		if l != m.defaultLocale {
			return l
		}
		if cand == m.defaultLocale || strings.HasPrefix(cand, m.defaultLocale+"-") {
			return m.defaultLocale
		}
	}
	return m.defaultLocale
}

// parseAcceptLanguage returns the header's language tags ordered by q-value,
// highest first. Malformed q-values sort last rather than failing the parse.
func parseAcceptLanguage(header string) []string {
	if header == "" {
		return nil
	}
	type weighted struct {
		tag string
		q   float64
	}
	var langs []weighted
	for _, item := range strings.Split(header, ",") {
		tag, qpart, found := strings.Cut(strings.TrimSpace(item), ";q=")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		q := 1.0
		if found {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(qpart), 64)
			if err != nil {
				parsed = 0
			}
			q = parsed
		}
		langs = append(langs, weighted{tag: tag, q: q})
	}
	sort.SliceStable(langs, func(i, j int) bool { return langs[i].q > langs[j].q })

	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = l.tag
	}
	return out
}
