// Package display provides terminal UI utilities for warnings and
// multi-step progress shown by the rimdefs CLI.
//
// Use ProgressIndicator for multi-step operations:
//
//	progress := display.NewProgressIndicator(os.Stdout, "Discovering mod roots", len(roots))
//	progress.Start()
//	for _, root := range roots {
//	    progress.Step(root)
//	}
//	progress.Complete("mod roots", found)
//
// Use Warning for user-facing problems that do not stop a build:
//
//	display.WarnSkippedDocuments(result).Display(os.Stderr)
package display
