// Package pipeline 定义了文件事件的异步处理流程。
package pipeline

import (
	"context"

	"yunpan-go/internal/config"
	"yunpan-go/pkg/es"
	"yunpan-go/pkg/kafka"
	"yunpan-go/pkg/log"
)

// Processor 消费文件生命周期事件并维护 Elasticsearch 检索索引。
// 索引维护放在消费端,上传主流程不因检索集群抖动而变慢。
type Processor struct {
	esCfg config.ElasticsearchConfig
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(esCfg config.ElasticsearchConfig) *Processor {
	return &Processor{esCfg: esCfg}
}

// Process 是事件处理的主函数,返回错误时消费端会按次数重试。
func (p *Processor) Process(ctx context.Context, event kafka.FileEvent) error {
	log.Infof("[Processor] 收到文件事件: type=%s, fileID=%d, name=%s", event.Type, event.FileID, event.Name)

	switch event.Type {
	case kafka.EventFileUploaded, kafka.EventFileCopied:
		doc := es.FileDocument{
			FileID:     event.FileID,
			Name:       event.Name,
			MimeType:   event.MimeType,
			Size:       event.Size,
			UploadedBy: event.UploadedBy,
		}
		if err := es.IndexFile(ctx, p.esCfg.IndexName, doc); err != nil {
			log.Errorf("[Processor] 写入检索索引失败: fileID=%d, err=%v", event.FileID, err)
			return err
		}
	case kafka.EventFileDeleted:
		if err := es.DeleteFile(ctx, p.esCfg.IndexName, event.FileID); err != nil {
			log.Errorf("[Processor] 删除检索索引失败: fileID=%d, err=%v", event.FileID, err)
			return err
		}
	default:
		log.Warnf("[Processor] 忽略未知事件类型: type=%s, fileID=%d", event.Type, event.FileID)
	}

	log.Infof("[Processor] 文件事件处理完成: type=%s, fileID=%d", event.Type, event.FileID)
	return nil
}
