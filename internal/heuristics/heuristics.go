// Package heuristics holds the keyword, anchor and blacklist tables the field
// extractors match OCR lines against. The tables are plain data so they can be
// audited, overridden from a YAML file and tested apart from any OCR plumbing.
package heuristics

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

// Heuristics is the full set of tables consumed by the extractors.
type Heuristics struct {
	NaturezaAnchor         string         `yaml:"naturezaAnchor"`
	NaturezaKeywords       map[string]int `yaml:"naturezaKeywords"`
	NaturezaSkipPrefixes   []string       `yaml:"naturezaSkipPrefixes"`
	NaturezaMinAnchorLen   int            `yaml:"naturezaMinAnchorLen"`
	NaturezaMinFallbackLen int            `yaml:"naturezaMinFallbackLen"`

	NumberLookahead int `yaml:"numberLookahead"`

	ReceiptAnchor     string   `yaml:"receiptAnchor"`
	ReceiptStops      []string `yaml:"receiptStops"`
	SenderAnchors     []string `yaml:"senderAnchors"`
	SenderLookahead   int      `yaml:"senderLookahead"`
	CorporateKeywords []string `yaml:"corporateKeywords"`
	LabelBlacklist    []string `yaml:"labelBlacklist"`
}

// Default returns the tables calibrated on DANFE invoices.
func Default() Heuristics {
	natureza := []string{
		"VENDA", "REMESSA", "DEVOLUÇÃO", "PROD", "MERC", "ADQ", "RECEB", "ENCOM", "ENTREGA",
		"COMBUS", "LUBRIF", "DEST", "CONSUM", "FINAL", "6102", "6656", "IND", "CTA", "ORD",
		"SUB", "TRIB",
	}
	weights := make(map[string]int, len(natureza))
	for _, kw := range natureza {
		weights[kw] = 1
	}

	return Heuristics{
		NaturezaAnchor:         "NATUREZA DA OPERAÇÃO",
		NaturezaKeywords:       weights,
		NaturezaSkipPrefixes:   []string{"PROTOCOLO"},
		NaturezaMinAnchorLen:   5,
		NaturezaMinFallbackLen: 10,

		NumberLookahead: 2,

		ReceiptAnchor:   "RECEBEMOS DE",
		ReceiptStops:    []string{" OS PRODUTOS", " CONSTANTES", ".", "-"},
		SenderAnchors:   []string{"DESTINATÁRIO/REMETENTE", "REMETENTE"},
		SenderLookahead: 5,
		CorporateKeywords: []string{
			"Ltda", "ME", "EPP", "S/A", "Indústria", "Comércio", "COOP", "ASSOCIAÇÃO",
			"SOCIEDADE", "EMPRESA", "LTDA", "S.A.", "INDUSTRIAL", "INDÚSTRIA",
		},
		LabelBlacklist: []string{
			"NOME / RAZÃO SOCIAL", "NOME/RAZÃO SOCIAL", "CNPJ", "DATA EMISSÃO", "DATA DA EMISSÃO",
			"DESTINATÁRIO", "REMETENTE", "CPF", "ENDEREÇO", "BAIRRO", "CEP", "UF", "INSCRIÇÃO",
			"FATURA", "CÁLCULO", "TRANSPORTADOR", "DADOS", "INFORMAÇÕES", "COMPLEMENTARES",
			"RESERVADO", "FISCO",
		},
	}
}

// Load reads a YAML file on top of Default: tables present in the file replace the
// defaults, absent ones are kept.
func Load(path string) (Heuristics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Heuristics{}, fmt.Errorf("read heuristics: %w", err)
	}
	var override Heuristics
	if err := yaml.Unmarshal(b, &override); err != nil {
		return Heuristics{}, fmt.Errorf("parse heuristics %s: %w", path, err)
	}
	h := Default().merge(override)
	if err := h.Validate(); err != nil {
		return Heuristics{}, err
	}
	return h, nil
}

func (h Heuristics) merge(o Heuristics) Heuristics {
	if o.NaturezaAnchor != "" {
		h.NaturezaAnchor = o.NaturezaAnchor
	}
	if o.NaturezaKeywords != nil {
		h.NaturezaKeywords = o.NaturezaKeywords
	}
	if o.NaturezaSkipPrefixes != nil {
		h.NaturezaSkipPrefixes = o.NaturezaSkipPrefixes
	}
	if o.NaturezaMinAnchorLen != 0 {
		h.NaturezaMinAnchorLen = o.NaturezaMinAnchorLen
	}
	if o.NaturezaMinFallbackLen != 0 {
		h.NaturezaMinFallbackLen = o.NaturezaMinFallbackLen
	}
	if o.NumberLookahead != 0 {
		h.NumberLookahead = o.NumberLookahead
	}
	if o.ReceiptAnchor != "" {
		h.ReceiptAnchor = o.ReceiptAnchor
	}
	if o.ReceiptStops != nil {
		h.ReceiptStops = o.ReceiptStops
	}
	if o.SenderAnchors != nil {
		h.SenderAnchors = o.SenderAnchors
	}
	if o.SenderLookahead != 0 {
		h.SenderLookahead = o.SenderLookahead
	}
	if o.CorporateKeywords != nil {
		h.CorporateKeywords = o.CorporateKeywords
	}
	if o.LabelBlacklist != nil {
		h.LabelBlacklist = o.LabelBlacklist
	}
	return h
}

// Validate rejects tables the extractors cannot work with.
func (h Heuristics) Validate() error {
	v := common.NewValidator().
		Field("naturezaAnchor", h.NaturezaAnchor, common.Required).
		Field("receiptAnchor", h.ReceiptAnchor, common.Required).
		Field("senderAnchors", h.SenderAnchors, common.Required).
		Field("corporateKeywords", h.CorporateKeywords, common.Required).
		Field("numberLookahead", h.NumberLookahead, common.NonNegative).
		Field("senderLookahead", h.SenderLookahead, common.NonNegative).
		Field("naturezaMinAnchorLen", h.NaturezaMinAnchorLen, common.NonNegative).
		Field("naturezaMinFallbackLen", h.NaturezaMinFallbackLen, common.NonNegative)
	if len(h.NaturezaKeywords) == 0 {
		v.Field("naturezaKeywords", []string(nil), common.Required)
	}
	if v.HasErrors() {
		return common.NewAppError("HEURISTICS_ERROR", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return nil
}

// NaturezaScore sums the weights of the keywords contained in an upper-cased line.
func (h Heuristics) NaturezaScore(upper string) int {
	score := 0
	for kw, w := range h.NaturezaKeywords {
		if strings.Contains(upper, kw) {
			score += w
		}
	}
	return score
}

// NaturezaTerms returns the keyword table sorted, for logging and audits.
func (h Heuristics) NaturezaTerms() []string {
	out := make([]string, 0, len(h.NaturezaKeywords))
	for kw := range h.NaturezaKeywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// HasCorporateKeyword reports whether line contains one of the corporate-entity
// keywords, ignoring case.
func (h Heuristics) HasCorporateKeyword(line string) bool {
	return containsAnyFold(line, h.CorporateKeywords)
}

// IsBlacklisted reports whether line contains one of the form-label words, ignoring case.
func (h Heuristics) IsBlacklisted(line string) bool {
	return containsAnyFold(line, h.LabelBlacklist)
}

// SkipNatureza reports whether an upper-cased fallback line starts with a skipped prefix.
func (h Heuristics) SkipNatureza(upper string) bool {
	for _, p := range h.NaturezaSkipPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
