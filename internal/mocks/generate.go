package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/playerlink --output domain/playerlink --outpkg playerlinkmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/news --output domain/news --outpkg newsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Oracle --dir ../usecase --output usecase --outpkg usecasemock --filename oracle_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RosterLookup --dir ../usecase --output usecase --outpkg usecasemock --filename roster_lookup_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PlayerSearch --dir ../usecase --output usecase --outpkg usecasemock --filename player_search_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name BodyFetcher --dir ../usecase --output usecase --outpkg usecasemock --filename body_fetcher_mock.go
