package metadata

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/renameio/v2"
	"github.com/venicegeo/bf-snap/util"
)

// Sidecar file extensions
const (
	XMLExtension        = ".xml"
	PropertiesExtension = ".properties"
)

// Write renders both sidecars for the record and writes them atomically to
// basename + ".xml" and basename + ".properties". It returns the two paths.
func Write(ctx util.LogContext, record Record, basename string) (xmlPath string, propertiesPath string, err error) {
	if err = record.Validate(); err != nil {
		return "", "", fmt.Errorf("invalid metadata record: %w", err)
	}

	doc, err := EOP(record)
	if err != nil {
		return "", "", err
	}

	xmlPath = basename + XMLExtension
	propertiesPath = basename + PropertiesExtension

	if err = writeDocument(ctx, xmlPath, doc); err != nil {
		return "", "", err
	}
	if err = renameio.WriteFile(propertiesPath, []byte(Properties(record)), 0644); err != nil {
		return "", "", util.LogSimpleErr(ctx, "Failed to write properties sidecar "+propertiesPath, err)
	}

	util.LogInfo(ctx, fmt.Sprintf("Wrote metadata sidecars %s and %s", xmlPath, propertiesPath))
	return xmlPath, propertiesPath, nil
}

func writeDocument(ctx util.LogContext, path string, doc *etree.Document) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return util.LogSimpleErr(ctx, "Failed to create pending sidecar "+path, err)
	}
	defer func() {
		// no-op once the file has been committed
		if cleanupErr := pendingFile.Cleanup(); cleanupErr != nil {
			util.LogAlert(ctx, fmt.Sprintf("Failed to clean up pending sidecar %s: %v", path, cleanupErr))
		}
	}()

	if _, err = doc.WriteTo(pendingFile); err != nil {
		return util.LogSimpleErr(ctx, "Failed to write EarthObservation sidecar "+path, err)
	}
	if err = pendingFile.CloseAtomicallyReplace(); err != nil {
		return util.LogSimpleErr(ctx, "Failed to replace EarthObservation sidecar "+path, err)
	}
	return nil
}
