// Package affiliate contains the Affiliate bounded context.
// This context describes how the service talks to e-commerce affiliate
// (commission-tracking) platforms.
//
// Key concepts:
//   - Platform: Port interface every platform client implements (Taobao, Pinduoduo, JD)
//   - MaterialSearchRequest / LinkConvertRequest / ShopSearchRequest / ItemDetailRequest:
//     typed inputs for the four shared operations
//   - Result: success payload returned by a platform
//   - PlatformError: business error reported by a platform
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package affiliate
