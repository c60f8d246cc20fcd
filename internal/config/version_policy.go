package config

import (
	"fmt"
	"slices"
	"strings"
)

// TaskFileVersion is the configVersion written by current task files.
const TaskFileVersion = "1"

// taskFileVersions lists every configVersion LoadTasks accepts, oldest first.
var taskFileVersions = []string{TaskFileVersion}

// checkTaskFileVersion rejects task files this build cannot read.
func checkTaskFileVersion(v string) error {
	if slices.Contains(taskFileVersions, v) {
		return nil
	}
	return fmt.Errorf("unsupported configVersion: %q (supported: %s)", v, strings.Join(taskFileVersions, ", "))
}
