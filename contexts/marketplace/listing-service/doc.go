// Package listingservice implements the car catalog and advertisement
// lifecycle inside the marketplace context: compound car+advertisement
// creation, the publisher ownership rule, search, related listings, and
// the append-only car history children (prices, ownership, images).
package listingservice
