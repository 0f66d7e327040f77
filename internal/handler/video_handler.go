package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

const videoFileName = "production_video.mp4"

// GetVideo 以流式响应返回宣传视频文件，文件缺失时返回 404
func (a *API) GetVideo(c *gin.Context) {
	path := filepath.Join(a.videoDir, videoFileName)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		respondError(c, http.StatusNotFound, "video not found")
		return
	}

	c.File(path)
}
