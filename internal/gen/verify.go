package gen

import (
	"bytes"
	"fmt"
	"slices"

	"tsvgen/internal/archive"
	"tsvgen/internal/errs"
	"tsvgen/internal/fasta"
	"tsvgen/internal/schema"
	"tsvgen/internal/writers"
	"tsvgen/pkg/api"
)

// Verify checks an archive against a schema: the TSV header matches the
// field order, every cell satisfies its field, and every FASTA reference
// resolves to an entry in the archive.
func Verify(schemaPath, schemaDir, archivePath, tsvName string) (api.VerifyReportV1, error) {
	rep := api.VerifyReportV1{Archive: archivePath, TSVName: tsvName}
	if err := ValidateTSVName(tsvName); err != nil {
		return rep, err
	}
	s, err := schema.Load(schema.Resolve(schemaPath, schemaDir))
	if err != nil {
		return rep, err
	}

	ar, err := archive.Open(archivePath)
	if err != nil {
		return rep, errs.IO("open archive", err)
	}
	defer ar.Close()

	names := ar.Names()
	if !slices.Contains(names, tsvName) {
		return rep, errs.Schemaf("archive has no entry %q (entries: %v)", tsvName, names)
	}
	data, err := ar.ReadFile(tsvName)
	if err != nil {
		return rep, errs.IO("read TSV", err)
	}
	header, rows, err := writers.ReadTSV(bytes.NewReader(data))
	if err != nil {
		return rep, errs.Schema(tsvName, err)
	}
	if !slices.Equal(header, s.Names()) {
		return rep, errs.Schemaf("%s: header %v does not match schema fields %v", tsvName, header, s.Names())
	}

	ids := map[string]map[string]struct{}{}
	for _, name := range names {
		if name == tsvName {
			continue
		}
		body, err := ar.ReadFile(name)
		if err != nil {
			return rep, errs.IO("read FASTA", err)
		}
		recs, err := fasta.ReadAll(bytes.NewReader(body))
		if err != nil {
			return rep, errs.Schema(name, err)
		}
		set := make(map[string]struct{}, len(recs))
		for _, r := range recs {
			set[r.ID] = struct{}{}
		}
		ids[name] = set
		rep.FASTAFiles = append(rep.FASTAFiles, name)
	}

	fileCol, headerCol := s.Index(schema.FieldFASTAFile), s.Index(schema.FieldFASTAHeader)
	for i, row := range rows {
		line := i + 2
		for j, f := range s.Fields {
			if f.Reserved() {
				continue
			}
			if err := f.Check(row[j]); err != nil {
				return rep, errs.Schemaf("%s line %d: %v", tsvName, line, err)
			}
		}
		if err := checkReference(row, fileCol, headerCol, ids); err != nil {
			return rep, errs.Schemaf("%s line %d: %v", tsvName, line, err)
		}
		if (fileCol >= 0 && row[fileCol] != "") || (headerCol >= 0 && row[headerCol] != "") {
			rep.ReferencedRows++
		}
	}
	rep.Rows = len(rows)
	return rep, nil
}

func checkReference(row []string, fileCol, headerCol int, ids map[string]map[string]struct{}) error {
	var file, header string
	if fileCol >= 0 {
		file = row[fileCol]
	}
	if headerCol >= 0 {
		header = row[headerCol]
	}
	if file != "" {
		set, ok := ids[file]
		if !ok {
			return fmt.Errorf("%s %q is not in the archive", schema.FieldFASTAFile, file)
		}
		if header != "" {
			if _, ok := set[header]; !ok {
				return fmt.Errorf("%s %q is not in %s", schema.FieldFASTAHeader, header, file)
			}
		}
		return nil
	}
	if header != "" {
		for _, set := range ids {
			if _, ok := set[header]; ok {
				return nil
			}
		}
		return fmt.Errorf("%s %q is not in any FASTA file", schema.FieldFASTAHeader, header)
	}
	return nil
}
