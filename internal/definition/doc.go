// Package definition is the label registry for coded person fields.
//
// Every categorical field has a static table mapping raw codes to a
// display label and a short description. Severity codes also carry the
// single color scale used by every chart and report. Codes without a
// definition are still formatted: underscores become spaces and each word
// is title-cased, so formatting never fails.
package definition
