package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// spaHandler 提供 dist 下的静态文件，找不到的路径回退到 index.html，交给前端路由处理。
func spaHandler(dist string) http.Handler {
	root := filepath.Clean(dist)
	files := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if strings.HasPrefix(p, root) {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(root, "index.html"))
	})
}

// uploadsHandler 只提供 dir 下的普通文件，目录和不存在的路径一律 404，不列出目录内容。
func uploadsHandler(dir string) http.Handler {
	root := filepath.Clean(dir)
	files := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
