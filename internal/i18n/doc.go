// Package i18n holds the operator-facing message catalogs and picks the
// locale to render them in.
//
// Catalogs live in locales/<code>.toml and are embedded at build time.
// Messages use {name} placeholders. A key missing from a locale falls back
// to English, and an unknown key renders as itself.
package i18n
