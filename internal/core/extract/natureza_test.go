package extract

import (
	"testing"

	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

func TestNaturezaAnchor(t *testing.T) {
	e := NewNaturezaExtractor(heuristics.Default())
	feed(e, "NATUREZA DA OPERAÇÃO\nVENDA DE MERCADORIA ADQUIRIDA\n")

	got, ok := e.Value()
	if !ok || got.Value != "VENDA DE MERCADORIA ADQUIRIDA" {
		t.Fatalf("Value() = %q, %v; want VENDA DE MERCADORIA ADQUIRIDA", got.Value, ok)
	}
	if got.Signal != SignalAnchor {
		t.Errorf("Signal = %s, want anchor", got.Signal)
	}
}

func TestNaturezaAnchorSkipsNumericAndShortLines(t *testing.T) {
	e := NewNaturezaExtractor(heuristics.Default())
	feed(e, "Natureza da Operação\n123456\n\n--\nREMESSA P/ INDUSTRIALIZACAO\nOUTRA LINHA")

	got, ok := e.Value()
	if !ok || got.Value != "REMESSA P/ INDUSTRIALIZACAO" {
		t.Fatalf("Value() = %q, %v; want REMESSA P/ INDUSTRIALIZACAO", got.Value, ok)
	}
	if got.Line != 4 {
		t.Errorf("Line = %d, want 4", got.Line)
	}
}

func TestNaturezaFallbackKeepsFirstHit(t *testing.T) {
	e := NewNaturezaExtractor(heuristics.Default())
	consumed := feed(e,
		"PROTOCOLO DE AUTORIZAÇÃO 123\nvenda mercadoria\nREMESSA P/ CONSERTO",
		"DEVOLUÇÃO DE COMPRA",
	)
	if consumed != 2 {
		t.Errorf("fallback must not stop the scan; consumed %d", consumed)
	}
	got, ok := e.Value()
	if !ok || got.Value != "VENDA MERCADORIA" {
		t.Fatalf("Value() = %q, %v; want VENDA MERCADORIA", got.Value, ok)
	}
	if got.Signal != SignalKeyword || got.Rotation != 0 {
		t.Errorf("candidate = %+v, want keyword at rotation 0", got)
	}
}

func TestNaturezaAnchorPreemptsEarlierFallback(t *testing.T) {
	e := NewNaturezaExtractor(heuristics.Default())
	consumed := feed(e,
		"REMESSA P/ CONSERTO",
		"Natureza da Operação\nVenda de producao",
		"NATUREZA DA OPERAÇÃO\nOUTRA NATUREZA",
	)
	if consumed != 2 {
		t.Errorf("consumed %d passes, want 2", consumed)
	}
	got, _ := e.Value()
	if got.Value != "Venda de producao" || got.Rotation != 90 {
		t.Errorf("Value() = %+v, want anchored line from rotation 90", got)
	}
}

func TestNaturezaUnresolved(t *testing.T) {
	e := NewNaturezaExtractor(heuristics.Default())
	feed(e, "XYZ", "ABC DEF")
	if _, ok := e.Value(); ok {
		t.Fatal("Value() resolved without anchor or keyword")
	}
	if r, _ := e.Resolved(); r != 0 {
		t.Errorf("Resolved() = %d, want 0", r)
	}
}
