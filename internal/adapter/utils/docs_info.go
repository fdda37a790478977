// @title           Dermatology Assistant API
// @version         1.0
// @description     Retrieval augmented answers for doctors during dermatology consultations.

// @contact.name    API Support
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//run postgres for the consultation log
//docker run -p 5432:5432 -e POSTGRES_PASSWORD=derma -d postgres:16

//swagger init
//swag init -g internal/adapter/utils/docs_info.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
