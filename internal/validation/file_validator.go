package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "bikepulse/internal/errors"
)

// FileValidator checks pipeline inputs and output locations before a step
// starts, so a missing reference dataset fails fast with every absent file
// named at once
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputs checks that every path is a readable dataset. Missing
// files are collected into a single not-found error.
func (v *FileValidator) ValidateInputs(paths ...string) error {
	var missing []string
	for _, p := range paths {
		err := v.ValidateDataset(p)
		if err == nil {
			continue
		}
		if apierrors.IsType(err, apierrors.ErrTypeNotFound) {
			missing = append(missing, p)
			continue
		}
		return err
	}

	if len(missing) > 0 {
		v.logger.Error("Pipeline inputs missing",
			slog.Any("files", missing))
		return apierrors.NewNotFoundError(strings.Join(missing, ", ")).
			WithContext("missing", len(missing))
	}

	v.logger.Debug("Pipeline inputs validated", slog.Int("files", len(paths)))
	return nil
}

// ValidateDataset checks a single .csv or .xlsx input
func (v *FileValidator) ValidateDataset(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return v.ValidateCSVFile(path)
	case ".xlsx", ".xlsm":
		return v.ValidateExcelFile(path)
	default:
		return apierrors.NewAppValidationError(
			fmt.Sprintf("unsupported dataset %s (extension %q)", path, ext), nil)
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apierrors.NewNotFoundError(path)
	}
	if err != nil {
		return apierrors.NewStorageError("failed to stat "+path, err)
	}
	if info.IsDir() {
		return apierrors.NewAppValidationError(path+" is a directory, not a file", nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apierrors.NewStorageError(path+" is not readable", err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that a CSV input exists and is not empty
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return apierrors.NewStorageError("failed to stat "+path, err)
	}
	if info.Size() == 0 {
		return apierrors.NewParsingError(path+": empty file", nil)
	}
	return nil
}

// ValidateExcelFile checks that a workbook opens and has at least one sheet
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apierrors.NewAppValidationError(path+" is a temporary Excel file", nil)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return apierrors.NewParsingError("failed to open workbook "+path, err)
	}
	defer f.Close()

	if len(f.GetSheetList()) == 0 {
		return apierrors.NewParsingError(path+": workbook has no sheets", nil)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apierrors.NewStorageError("failed to create output directory "+dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return apierrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
