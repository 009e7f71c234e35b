package extract

import (
	"testing"

	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

func TestRemetenteReceiptStub(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e,
		"ACME DISTRIBUIDORA LTDA\nRECEBEMOS DE INDUSTRIA EXEMPLO LTDA. OS PRODUTOS CONSTANTES DA NOTA FISCAL",
		"CNPJ 12.345.678/0001-90",
	)

	id, _, ok := e.TaxID()
	if !ok || id.Value != "12.345.678/0001-90" || id.Kind != KindCNPJ {
		t.Fatalf("TaxID() = %+v, %v", id, ok)
	}
	name, ok := e.LegalName()
	if !ok || name.Value != "Industria Exemplo Ltda" {
		t.Fatalf("LegalName() = %q, %v; want Industria Exemplo Ltda", name.Value, ok)
	}
	if name.Signal != SignalAnchor {
		t.Errorf("Signal = %s, want anchor", name.Signal)
	}
}

func TestRemetenteReceiptStubApostrophe(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "RECEBEMOS DE COMERCIAL D'OESTE LTDA OS PRODUTOS\nCNPJ 12.345.678/0001-90")

	name, ok := e.LegalName()
	if !ok || name.Value != "Comercial D'Oeste Ltda" {
		t.Fatalf("LegalName() = %q, %v; want Comercial D'Oeste Ltda", name.Value, ok)
	}
}

func TestTitleCase(t *testing.T) {
	c := NewRemetenteExtractor(heuristics.Default()).title
	tests := []struct {
		in, want string
	}{
		{"INDUSTRIA EXEMPLO LTDA", "Industria Exemplo Ltda"},
		{"COMERCIAL D'OESTE LTDA", "Comercial D'Oeste Ltda"},
		{"COMERCIAL D’OESTE LTDA", "Comercial D’Oeste Ltda"},
		{"CASA D' AGUA ME", "Casa D' Agua Me"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(c, tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRemetentePrefersCNPJOverCPF(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "CPF 123.456.789-01", "CNPJ 98.765.432/0001-10")

	id, src, ok := e.TaxID()
	if !ok || id.Kind != KindCNPJ || id.Value != "98.765.432/0001-10" {
		t.Fatalf("TaxID() = %+v, %v; want the CNPJ", id, ok)
	}
	if src.Rotation != 90 {
		t.Errorf("TaxID source rotation = %d, want 90", src.Rotation)
	}
}

func TestRemetenteSenderBlockBeatsUnanchoredScan(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "DISTRIBUIDORA ALFA LTDA\n"+
		"IDENTIFICAÇÃO DO REMETENTE\n"+
		"NOME/RAZÃO SOCIAL\n"+
		"BETA COMERCIO EPP\n"+
		"CNPJ 12.345.678/0001-90")

	name, ok := e.LegalName()
	if !ok || name.Value != "BETA COMERCIO EPP" {
		t.Fatalf("LegalName() = %q, %v; want BETA COMERCIO EPP", name.Value, ok)
	}
}

func TestRemetenteUnanchoredScan(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "DANFE\n  GAMA SERVICOS LTDA  \nCNPJ 12.345.678/0001-90")

	name, ok := e.LegalName()
	if !ok || name.Value != "GAMA SERVICOS LTDA" || name.Signal != SignalKeyword {
		t.Fatalf("LegalName() = %+v, %v; want keyword GAMA SERVICOS LTDA", name, ok)
	}
}

func TestRemetenteCPFOnly(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "CPF 123.456.789-01\nJOAO DA SILVA ME")

	id, _, ok := e.TaxID()
	if !ok || id.Kind != KindCPF || id.Value != "123.456.789-01" {
		t.Fatalf("TaxID() = %+v, %v; want CPF", id, ok)
	}
	if name, ok := e.LegalName(); !ok || name.Value != "JOAO DA SILVA ME" {
		t.Errorf("LegalName() = %q, %v", name.Value, ok)
	}
}

func TestRemetenteNoTaxIDMeansNoName(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "ACME LTDA\nRECEBEMOS DE ACME LTDA OS PRODUTOS")

	if _, _, ok := e.TaxID(); ok {
		t.Fatal("TaxID() found on text without one")
	}
	if _, ok := e.LegalName(); ok {
		t.Error("LegalName() resolved without a tax id")
	}
	if r, total := e.Resolved(); r != 0 || total != 2 {
		t.Errorf("Resolved() = %d/%d, want 0/2", r, total)
	}
}

func TestRemetenteNameAbsentWithTaxID(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	feed(e, "CNPJ 12.345.678/0001-90\nRUA DAS FLORES 10")

	if _, _, ok := e.TaxID(); !ok {
		t.Fatal("TaxID() not found")
	}
	if _, ok := e.LegalName(); ok {
		t.Error("LegalName() resolved without any corporate keyword")
	}
	if r, _ := e.Resolved(); r != 1 {
		t.Errorf("Resolved() = %d, want 1", r)
	}
}

func TestRemetenteAboveTaxID(t *testing.T) {
	e := NewRemetenteExtractor(heuristics.Default())
	e.taxID = TaxID{Kind: KindCNPJ, Value: "12.345.678/0001-90"}
	p := scan.Pass{Page: 2, Rotation: 270}
	lines := []docLine{
		{text: "ACME LTDA", pass: p},
		{text: "   ", pass: p},
		{text: "CNPJ 12.345.678/0001 90", pass: p},
	}
	got, ok := e.aboveTaxID(lines)
	if !ok || got.Value != "ACME LTDA" || got.Signal != SignalProximity || got.Page != 2 {
		t.Fatalf("aboveTaxID() = %+v, %v", got, ok)
	}
}

func TestJoinPassesKeepsOrigin(t *testing.T) {
	passes := []scan.Pass{
		{Page: 1, Rotation: 0, Text: "a\nb\n"},
		{Page: 1, Rotation: 90, Text: "c"},
	}
	lines := joinPasses(passes)
	// "a\nb\n" + "\n" + "c" splits into a, b, "", c.
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[3].text != "c" || lines[3].pass.Rotation != 90 {
		t.Errorf("lines[3] = %+v, want c from rotation 90", lines[3])
	}
	if lines[2].pass.Rotation != 0 {
		t.Errorf("blank separator line attributed to rotation %d, want 0", lines[2].pass.Rotation)
	}
}
