package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// gatherURLs resolves the input URL list: a line-delimited file takes
// precedence over the comma-separated flag. Entries are trimmed and blank
// entries dropped.
func gatherURLs(inputFile, urlList string) ([]string, error) {
	if inputFile != "" {
		return readURLFile(inputFile)
	}
	return splitURLList(urlList), nil
}

// readURLFile reads URLs from a text file, one per line.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read URL file: %w", err)
	}
	return urls, nil
}

// splitURLList splits a comma-separated URL list.
func splitURLList(s string) []string {
	var urls []string
	for _, part := range strings.Split(s, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
