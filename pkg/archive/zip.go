// Package archive 提供了将一组文件打包为 zip 流的轻量封装。
package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// Entry 是归档中的一个条目：内容读取器和归档内相对路径。
type Entry struct {
	RelativePath string
	Reader       io.Reader
}

// WriteZip 将所有条目按相对路径写入 zip 流。
// 条目按传入顺序写出，调用方负责关闭底层的 Reader。
func WriteZip(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		fw, err := zw.Create(entry.RelativePath)
		if err != nil {
			return fmt.Errorf("创建归档条目失败 %s: %w", entry.RelativePath, err)
		}
		if _, err := io.Copy(fw, entry.Reader); err != nil {
			return fmt.Errorf("写入归档条目失败 %s: %w", entry.RelativePath, err)
		}
	}
	return zw.Close()
}

// StreamWriter 包装 zip.Writer，支持逐个条目流式写入，
// 用于目录下载时边取边写，避免整树缓冲在内存里。
type StreamWriter struct {
	zw *zip.Writer
}

// NewStreamWriter 在 w 上创建一个流式 zip 写入器。
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{zw: zip.NewWriter(w)}
}

// Add 写入一个条目。
func (s *StreamWriter) Add(relativePath string, r io.Reader) error {
	fw, err := s.zw.Create(relativePath)
	if err != nil {
		return fmt.Errorf("创建归档条目失败 %s: %w", relativePath, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("写入归档条目失败 %s: %w", relativePath, err)
	}
	return nil
}

// Close 收尾归档，写出中央目录。
func (s *StreamWriter) Close() error {
	return s.zw.Close()
}
