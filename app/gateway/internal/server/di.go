package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	"github.com/iWorld-y/overcomer/app/gateway/internal/data"
	"github.com/iWorld-y/overcomer/app/gateway/internal/service"
	"github.com/iWorld-y/overcomer/app/gateway/internal/usecase"
)

// ProviderSet 是内容网关的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewContentEngine,
	wire.Bind(new(usecase.ContentFetcher), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewArchiveRepo,

	// UseCase providers
	usecase.NewContentUseCase,

	// Service providers
	service.NewContentService,
)
