package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the config at path whenever it is written or replaced and
// sends the result on configs. The parent directory is watched because
// editors that save by rename drop the watch on the file itself; the rename
// away is skipped and the create that follows is picked up.
func Watch(path string, configs chan<- *Config, errors chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	target := filepath.Clean(path)
	go func() {
		// ignore close error
		defer watcher.Close()
	loop:
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					break loop
				}
				if filepath.Clean(event.Name) != target {
					continue loop
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue loop
				}
				c, err := ReadConfig(path)
				if err != nil {
					select {
					case errors <- err:
					case <-done:
						break loop
					}
					continue loop
				}
				logger.Info("config changed", "path", path)
				select {
				case configs <- c:
				case <-done:
					break loop
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					break loop
				}
				select {
				case errors <- err:
				case <-done:
					break loop
				}
			case <-done:
				break loop
			}
		}
	}()
	err = watcher.Add(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("can't watch %s: %w", path, err)
	}
	return nil
}
