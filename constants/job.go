package constants

// Job identifies one of the four extraction jobs run over every document.
type Job string

const (
	JobAccessKey   Job = "access_key"
	JobNatureza    Job = "natureza_operacao"
	JobNumeroSerie Job = "numero_serie"
	JobRemetente   Job = "remetente"
)

// Jobs lists the extraction jobs in the order the batch runs them.
var Jobs = []Job{JobAccessKey, JobNatureza, JobNumeroSerie, JobRemetente}

// DumpSuffix is appended to the document filename of a diagnostic OCR dump.
func (j Job) DumpSuffix() string {
	switch j {
	case JobNatureza:
		return "_natureza"
	case JobNumeroSerie:
		return "_numero_serie"
	case JobRemetente:
		return "_remetente"
	default:
		return ""
	}
}

// DefaultDPI is the rasterization resolution each job was calibrated with.
func (j Job) DefaultDPI() int {
	switch j {
	case JobNatureza, JobNumeroSerie:
		return 600
	default:
		return 300
	}
}

// DefaultOutputFile is the JSON file a job's records are written to.
func (j Job) DefaultOutputFile() string {
	switch j {
	case JobAccessKey:
		return "chaves_danfs.json"
	case JobNatureza:
		return "natureza_operacao.json"
	case JobNumeroSerie:
		return "numero_serie_todos.json"
	case JobRemetente:
		return "remetentes_cnpj.json"
	default:
		return string(j) + ".json"
	}
}

// Valid reports whether j is one of Jobs.
func (j Job) Valid() bool {
	for _, k := range Jobs {
		if k == j {
			return true
		}
	}
	return false
}
