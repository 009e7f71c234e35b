// Package results holds the per-document extraction records and their ordered
// aggregation across a batch.
package results

import "github.com/joseph-ayodele/danfe-extractor/constants"

// AccessKeyRecord is one entry of the access-key output.
type AccessKeyRecord struct {
	File      string  `json:"file"`
	AccessKey *string `json:"access_key"`
}

// NaturezaRecord is one entry of the natureza-da-operação output.
type NaturezaRecord struct {
	File             string  `json:"file"`
	NaturezaOperacao *string `json:"natureza_operacao"`
}

// NumeroSerieRecord is one entry of the número/série output. Number has leading zeros
// stripped, so an all-zero number is reported as "".
type NumeroSerieRecord struct {
	File   string  `json:"file"`
	Number *string `json:"number"`
	Serie  *int    `json:"serie"`
}

// RemetenteRecord is one entry of the sender output.
type RemetenteRecord struct {
	File        string  `json:"file"`
	CPFOrCNPJ   *string `json:"cpf_or_cnpj"`
	RazaoSocial *string `json:"razao_social"`
}

// Outcome is how one extraction job ended for one document.
type Outcome struct {
	Status   constants.FieldStatus
	Resolved int
	Total    int
	Passes   int    // OCR passes the job consumed
	Failure  string // rasterizer/OCR failure, empty when the scan completed
	Dump     string // where the diagnostic transcript was written, if anywhere
}

// Document is everything extracted from one PDF.
type Document struct {
	File        string
	ContentHash string

	AccessKey   AccessKeyRecord
	Natureza    NaturezaRecord
	NumeroSerie NumeroSerieRecord
	Remetente   RemetenteRecord

	Outcomes map[constants.Job]Outcome
}

// NewDocument returns a document with every field absent.
func NewDocument(file string) Document {
	return Document{
		File:        file,
		AccessKey:   AccessKeyRecord{File: file},
		Natureza:    NaturezaRecord{File: file},
		NumeroSerie: NumeroSerieRecord{File: file},
		Remetente:   RemetenteRecord{File: file},
		Outcomes:    make(map[constants.Job]Outcome, len(constants.Jobs)),
	}
}

// Record returns the output record of job.
func (d Document) Record(job constants.Job) any {
	switch job {
	case constants.JobAccessKey:
		return d.AccessKey
	case constants.JobNatureza:
		return d.Natureza
	case constants.JobNumeroSerie:
		return d.NumeroSerie
	case constants.JobRemetente:
		return d.Remetente
	default:
		return nil
	}
}

// Columns returns the record keys of job in output order.
func Columns(job constants.Job) []string {
	switch job {
	case constants.JobAccessKey:
		return []string{"file", "access_key"}
	case constants.JobNatureza:
		return []string{"file", "natureza_operacao"}
	case constants.JobNumeroSerie:
		return []string{"file", "number", "serie"}
	case constants.JobRemetente:
		return []string{"file", "cpf_or_cnpj", "razao_social"}
	default:
		return nil
	}
}

// Row returns the values of job's record in Columns order; absent values are nil.
func (d Document) Row(job constants.Job) []any {
	switch job {
	case constants.JobAccessKey:
		return []any{d.File, deref(d.AccessKey.AccessKey)}
	case constants.JobNatureza:
		return []any{d.File, deref(d.Natureza.NaturezaOperacao)}
	case constants.JobNumeroSerie:
		return []any{d.File, deref(d.NumeroSerie.Number), deref(d.NumeroSerie.Serie)}
	case constants.JobRemetente:
		return []any{d.File, deref(d.Remetente.CPFOrCNPJ), deref(d.Remetente.RazaoSocial)}
	default:
		return nil
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
