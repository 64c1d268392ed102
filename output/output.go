// Package output writes the harvested link list and the platform-specific
// IDM enqueue scripts.
package output

import (
	"fmt"
	"os"
	"strings"
)

// LinksFileName is the link list both enqueue scripts read from.
const LinksFileName = "links.txt"

// ScriptName returns the enqueue script file name for the platform.
func ScriptName(windows bool) string {
	if windows {
		return "idm_queue.bat"
	}
	return "idm_queue.sh"
}

// WriteLinks writes the links to path, one per line.
func WriteLinks(links []string, path string) error {
	var b strings.Builder
	for _, link := range links {
		b.WriteString(link)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteEnqueueScript writes a script that feeds links.txt into the IDM
// queue: a batch file on Windows, a shell script elsewhere.
func WriteEnqueueScript(path, idmPath, downloadDir string, windows bool) error {
	var content string
	if windows {
		content = windowsScript(idmPath, downloadDir)
	} else {
		content = unixScript(idmPath, downloadDir)
	}
	return os.WriteFile(path, []byte(content), 0o755)
}

func windowsScript(idmPath, downloadDir string) string {
	// Double quotes in paths are doubled for batch quoting.
	idmPath = strings.ReplaceAll(idmPath, `"`, `""`)
	downloadDir = strings.ReplaceAll(downloadDir, `"`, `""`)

	var b strings.Builder
	b.WriteString("@echo off\r\n")
	b.WriteString("echo IDM Link Enqueue Script\r\n")
	b.WriteString("echo ----------------------\r\n\r\n")
	fmt.Fprintf(&b, "set \"IDM_PATH=%s\"\r\n", idmPath)
	fmt.Fprintf(&b, "set \"DOWNLOAD_DIR=%s\"\r\n\r\n", downloadDir)
	b.WriteString("if not exist \"%IDM_PATH%\" (\r\n")
	b.WriteString("    echo IDM executable not found at %IDM_PATH%\r\n")
	b.WriteString("    echo Please edit this script with the correct path to IDMan.exe\r\n")
	b.WriteString("    pause\r\n")
	b.WriteString("    exit /b 1\r\n")
	b.WriteString(")\r\n\r\n")
	b.WriteString("echo Adding links to IDM queue...\r\n")
	fmt.Fprintf(&b, "for /f \"usebackq delims=\" %%%%u in (\"%s\") do (\r\n", LinksFileName)
	b.WriteString("    echo Adding: %%u\r\n")
	b.WriteString("    \"%IDM_PATH%\" /d \"%%u\" /p \"%DOWNLOAD_DIR%\" /n /a\r\n")
	b.WriteString("    timeout /t 1 /nobreak >nul\r\n")
	b.WriteString(")\r\n\r\n")
	b.WriteString("echo All links have been added to IDM queue.\r\n")
	b.WriteString("echo Remember to start IDM to begin downloads.\r\n")
	b.WriteString("pause\r\n")
	return b.String()
}

func unixScript(idmPath, downloadDir string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n\n")
	b.WriteString("echo \"IDM Link Enqueue Script\"\n")
	b.WriteString("echo \"----------------------\"\n\n")
	fmt.Fprintf(&b, "IDM_PATH=%q\n", idmPath)
	fmt.Fprintf(&b, "DOWNLOAD_DIR=%q\n\n", downloadDir)
	b.WriteString("if [ ! -f \"$IDM_PATH\" ]; then\n")
	b.WriteString("    echo \"IDM executable not found at $IDM_PATH\"\n")
	b.WriteString("    echo \"Please edit this script with the correct path to IDMan\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("fi\n\n")
	b.WriteString("echo \"Adding links to IDM queue...\"\n\n")
	b.WriteString("while IFS= read -r url; do\n")
	b.WriteString("    echo \"Adding: $url\"\n")
	b.WriteString("    \"$IDM_PATH\" /d \"$url\" /p \"$DOWNLOAD_DIR\" /n /a\n")
	b.WriteString("    sleep 1\n")
	fmt.Fprintf(&b, "done < %s\n\n", LinksFileName)
	b.WriteString("echo \"All links have been added to IDM queue.\"\n")
	b.WriteString("echo \"Remember to start IDM to begin downloads.\"\n")
	return b.String()
}
