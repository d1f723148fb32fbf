// Package metadata locates, decodes and interprets the experiment schema
// embedded in an IMD file.
//
// The schema is an XML document stored as wide text near the end of the file,
// after the binary record region. Locate brackets it with two backward
// searches, ReadText decodes it, and ParseSchema extracts the acquisition
// markers (channels) and dual-analyte calibration control points:
//
//	region, err := metadata.Locate(f, size)
//	if err != nil {
//	    return err
//	}
//	text, err := metadata.ReadText(f, region)
//	if err != nil {
//	    return err
//	}
//	schema, err := metadata.ParseSchema(text)
//
// Only the elements named by MarkersPath and DualAnalytesPath are consulted;
// the rest of the document is parsed for well-formedness and otherwise ignored.
package metadata
