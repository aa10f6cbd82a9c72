package ports

import "screenviz/domain/dataset"

// TableReaderPort loads tabular input files
type TableReaderPort interface {
	Read(path string) (*dataset.Table, error)
}

// TableWriterPort writes tabular exports
type TableWriterPort interface {
	Write(path string, headers []string, rows [][]string) error
}
