package core

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

// Fake pages encode their page number as height; the fake rotator encodes the
// rotation as width-1, so the fake OCR engine knows which pass it is reading.
type fakeRaster struct{ pages int }

func (f fakeRaster) Render(context.Context, string, int) ([]image.Image, error) {
	out := make([]image.Image, f.pages)
	for i := range out {
		out[i] = image.NewGray(image.Rect(0, 0, 1, i+1))
	}
	return out, nil
}

func fakeRotate(img image.Image, deg int) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, deg+1, img.Bounds().Dy())), nil
}

type fakeOCR struct {
	mu    sync.Mutex
	texts map[[2]int]string // {page, rotation} -> text
	calls int
	err   error
}

func (f *fakeOCR) Recognize(_ context.Context, img image.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	b := img.Bounds()
	return f.texts[[2]int{b.Dy(), b.Dx() - 1}], nil
}

type dump struct {
	file string
	job  constants.Job
	text string
}

type fakeSink struct{ dumps []dump }

func (s *fakeSink) WriteDump(_ context.Context, file string, job constants.Job, text string) (string, error) {
	s.dumps = append(s.dumps, dump{file, job, text})
	return file + job.DumpSuffix() + ".txt", nil
}

func newTestProcessor(pages int, ocr *fakeOCR, sink DiagnosticSink) *Processor {
	s := scan.NewScanner(fakeRaster{pages: pages}, ocr, fakeRotate, func(img image.Image) image.Image { return img }, nil)
	return NewProcessor(nil, s, sink, DefaultOptions(heuristics.Default()))
}

const fullPage = "CHAVE DE ACESSO\n" +
	"3524 0112 3456 7800 0190 5500 1000 0012 3410 0001 2345\n" +
	"NATUREZA DA OPERAÇÃO\n" +
	"VENDA DE MERCADORIA\n" +
	"Nº 000012345\n" +
	"SÉRIE 1\n" +
	"RECEBEMOS DE ACME INDUSTRIA LTDA OS PRODUTOS\n" +
	"CNPJ 12.345.678/0001-90"

func TestProcessResolvesEveryField(t *testing.T) {
	ocr := &fakeOCR{texts: map[[2]int]string{{1, 0}: fullPage}}
	sink := &fakeSink{}
	doc := newTestProcessor(1, ocr, sink).Process(context.Background(), "/in/nota.pdf")

	if doc.File != "nota.pdf" {
		t.Errorf("File = %q, want nota.pdf", doc.File)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"access_key", deref(doc.AccessKey.AccessKey), "35240112345678000190550010000012341000012345"},
		{"natureza_operacao", deref(doc.Natureza.NaturezaOperacao), "VENDA DE MERCADORIA"},
		{"number", deref(doc.NumeroSerie.Number), "12345"},
		{"serie", deref(doc.NumeroSerie.Serie), 1},
		{"cpf_or_cnpj", deref(doc.Remetente.CPFOrCNPJ), "12.345.678/0001-90"},
		{"razao_social", deref(doc.Remetente.RazaoSocial), "Acme Industria Ltda"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	for _, job := range constants.Jobs {
		if o := doc.Outcomes[job]; o.Status != constants.StatusFound || o.Failure != "" {
			t.Errorf("%s outcome = %+v, want FOUND", job, o)
		}
	}
	if n := doc.Outcomes[constants.JobAccessKey].Passes; n != 1 {
		t.Errorf("access key read %d passes, want 1", n)
	}
	if n := doc.Outcomes[constants.JobRemetente].Passes; n != 4 {
		t.Errorf("remetente read %d passes, want 4", n)
	}
	if len(sink.dumps) != 0 {
		t.Errorf("wrote %d dumps for a fully resolved document", len(sink.dumps))
	}
	// 300 dpi: 1 pass for the key, 3 more for the sender; 600 dpi: 1 plain, 1 preprocessed.
	if ocr.calls != 6 {
		t.Errorf("ocr ran %d times, want 6", ocr.calls)
	}
}

func TestProcessUnreadableDocumentDumpsEveryJob(t *testing.T) {
	sink := &fakeSink{}
	doc := newTestProcessor(2, &fakeOCR{}, sink).Process(context.Background(), "vazia.pdf")

	if doc.AccessKey.AccessKey != nil || doc.Remetente.CPFOrCNPJ != nil {
		t.Errorf("unexpected values: %+v %+v", doc.AccessKey, doc.Remetente)
	}
	if len(sink.dumps) != len(constants.Jobs) {
		t.Fatalf("wrote %d dumps, want %d", len(sink.dumps), len(constants.Jobs))
	}
	for i, job := range constants.Jobs {
		d := sink.dumps[i]
		if d.job != job || d.file != "vazia.pdf" {
			t.Errorf("dump %d = %s/%s, want vazia.pdf/%s", i, d.file, d.job, job)
		}
		o := doc.Outcomes[job]
		if o.Status != constants.StatusExhausted || o.Passes != 8 {
			t.Errorf("%s outcome = %+v, want EXHAUSTED after 8 passes", job, o)
		}
		if o.Dump != "vazia.pdf"+job.DumpSuffix()+".txt" {
			t.Errorf("%s dump location = %q", job, o.Dump)
		}
	}
}

func TestProcessPartialNumeroSerieIsDumped(t *testing.T) {
	ocr := &fakeOCR{texts: map[[2]int]string{{1, 90}: "Nº 000054321"}}
	sink := &fakeSink{}
	doc := newTestProcessor(1, ocr, sink).ProcessJob(context.Background(), "p.pdf", constants.JobNumeroSerie)

	o := doc.Outcomes[constants.JobNumeroSerie]
	if o.Status != constants.StatusPartial || o.Resolved != 1 || o.Total != 2 {
		t.Errorf("outcome = %+v, want PARTIAL 1/2", o)
	}
	if got := deref(doc.NumeroSerie.Number); got != "54321" {
		t.Errorf("number = %v, want 54321", got)
	}
	if len(sink.dumps) != 1 || sink.dumps[0].job != constants.JobNumeroSerie {
		t.Fatalf("dumps = %+v, want one numero_serie dump", sink.dumps)
	}
	want := "--- Página 1 (rot 0°) ---\n\n\n--- Página 1 (rot 90°) ---\nNº 000054321\n"
	if got := sink.dumps[0].text; len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("dump text starts %q, want prefix %q", got, want)
	}
}

func TestProcessCollaboratorFailureIsNotFatal(t *testing.T) {
	sink := &fakeSink{}
	ocr := &fakeOCR{err: errors.New("tesseract: exit status 1")}
	doc := newTestProcessor(1, ocr, sink).Process(context.Background(), "quebrada.pdf")

	for _, job := range constants.Jobs {
		o := doc.Outcomes[job]
		if o.Failure == "" || o.Status != constants.StatusExhausted {
			t.Errorf("%s outcome = %+v, want a recorded failure", job, o)
		}
	}
	if doc.Remetente.File != "quebrada.pdf" {
		t.Error("record missing file name")
	}
	if len(sink.dumps) != len(constants.Jobs) {
		t.Errorf("wrote %d dumps, want %d", len(sink.dumps), len(constants.Jobs))
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ocr := &fakeOCR{texts: map[[2]int]string{{1, 0}: fullPage}}
	doc := newTestProcessor(1, ocr, nil).Process(ctx, "a.pdf")

	if ocr.calls != 0 {
		t.Errorf("ocr ran %d times on a cancelled context", ocr.calls)
	}
	for _, job := range constants.Jobs {
		if o := doc.Outcomes[job]; o.Failure != context.Canceled.Error() {
			t.Errorf("%s outcome = %+v, want failure", job, o)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfgDPI := map[constants.Job]int{constants.JobAccessKey: 200, constants.JobRemetente: 0}
	o := OptionsFromConfig(ocrConfig(cfgDPI), heuristics.Default())
	if o.Scan[constants.JobAccessKey].DPI != 200 {
		t.Errorf("access key dpi = %d, want 200", o.Scan[constants.JobAccessKey].DPI)
	}
	if o.Scan[constants.JobRemetente].DPI != 300 {
		t.Errorf("remetente dpi = %d, want default 300", o.Scan[constants.JobRemetente].DPI)
	}
	if !o.Scan[constants.JobNumeroSerie].Preprocess || o.Scan[constants.JobNatureza].Preprocess {
		t.Error("only numero_serie should preprocess")
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func ocrConfig(dpi map[constants.Job]int) common.OCRConfig {
	return common.OCRConfig{DPI: dpi}
}
