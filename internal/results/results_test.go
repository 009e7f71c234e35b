package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

func TestAggregatorKeepsInputOrder(t *testing.T) {
	a := NewAggregator(50)
	var wg sync.WaitGroup
	for i := 49; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Put(i, NewDocument(fmt.Sprintf("%03d.pdf", i)))
		}(i)
	}
	wg.Wait()

	docs := a.Documents()
	if len(docs) != 50 {
		t.Fatalf("len(Documents()) = %d, want 50", len(docs))
	}
	for i, d := range docs {
		if want := fmt.Sprintf("%03d.pdf", i); d.File != want {
			t.Fatalf("Documents()[%d].File = %q, want %q", i, d.File, want)
		}
	}
}

func TestAggregatorSkipsMissingSlots(t *testing.T) {
	a := NewAggregator(3)
	a.Put(2, NewDocument("c.pdf"))
	a.Put(0, NewDocument("a.pdf"))
	a.Put(4, NewDocument("e.pdf"))

	recs := a.Records(constants.JobAccessKey)
	if len(recs) != 3 {
		t.Fatalf("len(Records()) = %d, want 3", len(recs))
	}
	if r := recs[2].(AccessKeyRecord); r.File != "e.pdf" || r.AccessKey != nil {
		t.Errorf("Records()[2] = %+v, want absent key for e.pdf", r)
	}
}

func TestAbsentFieldsSerializeAsNull(t *testing.T) {
	d := NewDocument("x.pdf")
	d.NumeroSerie.Serie = Ptr(1)
	b, err := json.Marshal(d.Record(constants.JobNumeroSerie))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"file":"x.pdf","number":null,"serie":1}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}

func TestRowMatchesColumns(t *testing.T) {
	d := NewDocument("x.pdf")
	d.Remetente.CPFOrCNPJ = Ptr("12.345.678/0001-90")
	for _, job := range constants.Jobs {
		if got, want := len(d.Row(job)), len(Columns(job)); got != want {
			t.Errorf("%s: len(Row()) = %d, len(Columns()) = %d", job, got, want)
		}
	}
	row := d.Row(constants.JobRemetente)
	if row[1] != "12.345.678/0001-90" || row[2] != nil {
		t.Errorf("Row(remetente) = %v", row)
	}
}

func TestSummary(t *testing.T) {
	a := NewAggregator(2)
	d1 := NewDocument("a.pdf")
	d1.Outcomes[constants.JobNumeroSerie] = Outcome{Status: constants.StatusPartial}
	d2 := NewDocument("b.pdf")
	d2.Outcomes[constants.JobNumeroSerie] = Outcome{Status: constants.StatusFound}
	a.Put(0, d1)
	a.Put(1, d2)

	s := a.Summary(constants.JobNumeroSerie)
	if s[constants.StatusPartial] != 1 || s[constants.StatusFound] != 1 {
		t.Errorf("Summary() = %v", s)
	}
}

func TestValidateRecords(t *testing.T) {
	tests := []struct {
		name    string
		job     constants.Job
		data    string
		wantErr bool
	}{
		{"access key", constants.JobAccessKey,
			`[{"file":"a.pdf","access_key":"35240112345678000190550010000012341000012345"}]`, false},
		{"access key null", constants.JobAccessKey, `[{"file":"a.pdf","access_key":null}]`, false},
		{"access key short", constants.JobAccessKey,
			`[{"file":"a.pdf","access_key":"3524011234567800019055001000001234100001234"}]`, true},
		{"missing field", constants.JobNatureza, `[{"file":"a.pdf"}]`, true},
		{"extra field", constants.JobNatureza, `[{"file":"a.pdf","natureza_operacao":"VENDA","x":1}]`, true},
		{"number stripped", constants.JobNumeroSerie, `[{"file":"a.pdf","number":"123","serie":1}]`, false},
		{"number degenerate", constants.JobNumeroSerie, `[{"file":"a.pdf","number":"","serie":null}]`, false},
		{"number padded", constants.JobNumeroSerie, `[{"file":"a.pdf","number":"000123","serie":1}]`, true},
		{"serie out of range", constants.JobNumeroSerie, `[{"file":"a.pdf","number":"1","serie":1000}]`, true},
		{"cnpj", constants.JobRemetente, `[{"file":"a.pdf","cpf_or_cnpj":"12.345.678/0001-90","razao_social":"ACME LTDA"}]`, false},
		{"cpf", constants.JobRemetente, `[{"file":"a.pdf","cpf_or_cnpj":"123.456.789-01","razao_social":null}]`, false},
		{"raw cnpj", constants.JobRemetente, `[{"file":"a.pdf","cpf_or_cnpj":"12345678000190","razao_social":null}]`, true},
		{"empty batch", constants.JobRemetente, `[]`, false},
		{"not json", constants.JobRemetente, `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecords(tt.job, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, common.ErrValidation) {
				t.Errorf("ValidateRecords() error = %v, want ErrValidation", err)
			}
		})
	}
}
