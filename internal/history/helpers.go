package history

import (
	"database/sql"
	"errors"
	"time"
)

const recordColumns = "id, source_path, style_json, status, stage, error_kind, error_message, exit_code, audio_path, vtt_path, srt_path, output_path, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           string
		sourcePath   string
		styleJSON    sql.NullString
		statusStr    string
		stage        sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
		exitCode     sql.NullInt64
		audioPath    sql.NullString
		vttPath      sql.NullString
		srtPath      sql.NullString
		outputPath   sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&sourcePath,
		&styleJSON,
		&statusStr,
		&stage,
		&errorKind,
		&errorMessage,
		&exitCode,
		&audioPath,
		&vttPath,
		&srtPath,
		&outputPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		SourcePath:   sourcePath,
		StyleJSON:    styleJSON.String,
		Status:       Status(statusStr),
		Stage:        stage.String,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMessage.String,
		AudioPath:    audioPath.String,
		VTTPath:      vttPath.String,
		SRTPath:      srtPath.String,
		OutputPath:   outputPath.String,
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		record.ExitCode = &code
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
