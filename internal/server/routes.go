package server

import (
	"net/http"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type preprocessBody struct {
	Source   string `json:"source"`
	Location string `json:"location"`
}

type compileBody struct {
	Source   string   `json:"source"`
	Location string   `json:"location"`
	Keywords []string `json:"keywords"`
	Stage    string   `json:"stage"`
	Platform string   `json:"platform"`
}

type compileAllBody struct {
	Source   string `json:"source"`
	Location string `json:"location"`
	Platform string `json:"platform"`
}

type compileResponse struct {
	OK       bool             `json:"ok"`
	Bindings []binding.Tagged `json:"bindings"`
	Rendered string           `json:"rendered"`
	Errors   []protocol.Error `json:"errors"`
	Shader   string           `json:"shader"`
}

func newCompileResponse(res session.CompileResult) compileResponse {
	return compileResponse{
		OK:       res.OK,
		Bindings: binding.TagAll(res.Bindings),
		Rendered: res.RenderBindings(),
		Errors:   res.Errors,
		Shader:   res.Shader,
	}
}

func (s *Server) registerRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": Version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		status := http.StatusOK
		ready := s.ready()
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": Version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/platforms", func(c *gin.Context) {
		var report protocol.PlatformReport
		err := s.withCompiler(func(cmp Compiler) error {
			var err error
			report, err = cmp.GetPlatforms(c.Request.Context())
			return err
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"values": report.Values})
	})

	r.POST("/preprocess", func(c *gin.Context) {
		var body preprocessBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var res protocol.PreprocessResult
		err := s.withCompiler(func(cmp Compiler) error {
			var err error
			res, err = cmp.Preprocess(c.Request.Context(), session.PreprocessRequest{
				Source:   body.Source,
				Location: body.Location,
			})
			return err
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.POST("/compile", func(c *gin.Context) {
		var body compileBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		stage, err := protocol.ParseStage(defaultString(body.Stage, "vertex"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		platform, err := protocol.ParsePlatform(body.Platform)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var res session.CompileResult
		err = s.withCompiler(func(cmp Compiler) error {
			var err error
			res, err = cmp.CompileSnippet(c.Request.Context(), session.CompileRequest{
				Source:   body.Source,
				Location: body.Location,
				Keywords: body.Keywords,
				Stage:    stage,
				Platform: platform,
			})
			return err
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, newCompileResponse(res))
	})

	r.POST("/compile-all", func(c *gin.Context) {
		var body compileAllBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		platform, err := protocol.ParsePlatform(body.Platform)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var pre protocol.PreprocessResult
		var compiled []session.SnipCompilation
		err = s.withCompiler(func(cmp Compiler) error {
			var err error
			pre, err = cmp.Preprocess(c.Request.Context(), session.PreprocessRequest{
				Source:   body.Source,
				Location: body.Location,
			})
			if err != nil {
				return err
			}
			compiled, err = cmp.CompileAll(c.Request.Context(), pre, platform)
			return err
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		programs := make([]gin.H, 0, len(compiled))
		for _, sc := range compiled {
			programs = append(programs, gin.H{
				"program_id":    sc.ProgramID,
				"configuration": sc.Configuration,
				"result":        newCompileResponse(sc.Result),
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"preprocess": pre,
			"programs":   programs,
		})
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
